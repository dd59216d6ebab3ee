package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself.
// output example:
//  {"NumGoroutines":11,"NumCPU":4,"HeapAllocatedMB":3,"SysMemoryMB":12,"Version":"1.0.10+20261001",
//   "Simulator":false,"MQTTQueue":0,"SerialError":"","Uptime":"1h2m3s", ...}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		healthData := struct {
			NumGoroutines   int
			NumCPU          int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Version         string
			ProgLang        string
			HostName        string
			Simulator       bool
			MQTTQueue       int
			SerialError     string
			Uptime          string
			Time            string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			NumCPU:          runtime.NumCPU(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Simulator:       app.simulate,
			MQTTQueue:       len(app.mqtt.C),
			SerialError:     errString(app.line.Err()),
			Uptime:          (time.Duration(app.clock.Millis()) * time.Millisecond).String(),
			Time:            app.clock.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
