package notify

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

// heartbeatInterval keeps proxies from reaping idle SSE connections
const heartbeatInterval = 30 * time.Second

// SSEHandler streams notifications for one user identity over server-sent
// events. The subscription lives exactly as long as the response stream: a
// failed write or a registry shutdown ends both.
func SSEHandler(registry *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := c.Query("email")
		if identity == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "email query parameter is required",
			})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		sub := registry.Subscribe(identity)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer registry.Unsubscribe(sub)

			if err := writeEvent(w, "connected", identity); err != nil {
				return
			}

			heartbeat := time.NewTicker(heartbeatInterval)
			defer heartbeat.Stop()

			for {
				select {
				case message := <-sub.Messages():
					if err := writeEvent(w, "notification", message); err != nil {
						log.Debugf("[Notify] SSE stream for %s closed: %v", identity, err)
						return
					}
				case <-heartbeat.C:
					// comment frame, ignored by EventSource clients
					if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-sub.Done():
					return
				}
			}
		}))

		return nil
	}
}

func writeEvent(w *bufio.Writer, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
