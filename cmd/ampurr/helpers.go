package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"

	"github.com/ampurr/ampurr/pkg/config"
	"github.com/ampurr/ampurr/pkg/cpufreq"
	"github.com/ampurr/ampurr/pkg/engine"
	"github.com/ampurr/ampurr/pkg/powersupply"
	"github.com/ampurr/ampurr/pkg/systemd"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// sysfsLocator adapts powersupply.Find to the engine's Locator interface.
type sysfsLocator struct{}

func (sysfsLocator) Find() (engine.BatteryHandle, error) {
	bat, err := powersupply.Find("")
	if err != nil {
		return nil, err
	}
	return bat, nil
}

func newEngine() *engine.Engine {
	return engine.New(
		sysfsLocator{},
		&config.Store{Path: configPath},
		&cpufreq.Controller{},
		systemd.New(),
	)
}

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}
