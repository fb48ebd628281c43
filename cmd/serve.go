// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netwisp/fwmon/context"
	"github.com/netwisp/fwmon/server"
	"github.com/netwisp/fwmon/simulator"
)

type ServeCmd struct {
	Port      uint16        `default:"8080" help:"Port to serve the upgrader surface on"`
	Devices   int           `default:"3" help:"Number of simulated devices to start upgrades for"`
	BatchId   string        `help:"Batch id to group the simulated upgrades under (empty for none)"`
	StepDelay time.Duration `default:"2s" help:"Delay between scripted upgrade phases"`

	quit chan os.Signal
}

func (c *ServeCmd) Run(args CommonArgs) error {
	logger, err := context.InitLogger(args.LogLevel)
	if err != nil {
		return err
	}

	sim := simulator.New()
	e := server.NewEchoServer("upgrader-sim", logger)
	sim.RegisterHandlers(e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewServer(ctx, e, c.Port)
	serveErr := make(chan error, 1)
	srv.Start(serveErr)

	for i := 1; i <= c.Devices; i++ {
		deviceId := fmt.Sprintf("device-%04d", i)
		deviceName := fmt.Sprintf("access-point-%02d", i)
		image := "openwrt-24.10-ath79-generic-squashfs-sysupgrade.bin"
		opId := sim.StartOperation(deviceId, deviceName, image, c.BatchId, simulator.DefaultScript(c.StepDelay))
		logger.Info("started simulated upgrade", "device", deviceId, "operation", opId)
	}

	c.quit = make(chan os.Signal, 1)
	signal.Notify(c.quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serveErr:
		return err
	case <-c.quit:
		if err := srv.Shutdown(time.Minute); err != nil {
			logger.Error("unexpected error stopping simulator server", "err", err)
		}
	}
	return nil
}
