package app

import (
	"accx/pkg/wiegand"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// channelState is the capture state of a reader channel.
type channelState struct {
	Channel int `json:"channel"`
	wiegand.State
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleEvents returns the recent credentials and passcodes, oldest first.
func (app *App) HandleEvents() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request events")

		return ctx.JSON(app.history.Events())
	}
}

// HandleChannels returns the capture state of the reader channels.
func (app *App) HandleChannels() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request channels")

		s := app.reader.Snapshot()
		resp := make([]channelState, 0, len(s))
		for i := range s {
			resp = append(resp, channelState{Channel: i + 1, State: s[i]})
		}
		return ctx.JSON(resp)
	}
}
