package main

import (
	"github.com/phil-mansfield/batvtk/lib"
	"github.com/phil-mansfield/batvtk/lib/error"
)

func main() {
	// Parse arguments: defaults, then the config file, then flag overrides.
	modeName, configFile, apply := lib.ParseCommandLine()
	raw := lib.DefaultRawArgs()
	if configFile != "" {
		if err := lib.ParseConfigFile(configFile, raw); err != nil {
			error.External("%s", err.Error())
		}
	}
	apply(raw)

	args, err := raw.Process()
	if err != nil { error.External("%s", err.Error()) }

	mode, ok := lib.ParseMode(modeName)
	if !ok {
		error.External(
			"You attempted to run batvtk in the mode '%s', but the only " +
				"valid modes are 'help', 'info', 'convert', and 'stats'.",
			modeName,
		)
	}

	switch mode {
	case lib.ModeHelp:
		lib.PrintHelp()
	case lib.ModeInfo:
		err = lib.Info(args)
	case lib.ModeConvert:
		err = lib.Convert(args)
	case lib.ModeStats:
		err = lib.Stats(args)
	}
	if err != nil { error.External("%s", err.Error()) }
}
