package handlers

import (
	"errors"
	"net/http"

	"audio_bridge/internal/daemon"

	"github.com/gin-gonic/gin"
)

const (
	commandParam      = "command"
	errMissingCommand = "missing 'command' parameter\n"
	textPlain         = "text/plain; charset=utf-8"
)

// commandFromRequest reads the command from the query string or a form body.
func commandFromRequest(c *gin.Context) (string, bool) {
	if cmd, ok := c.GetQuery(commandParam); ok {
		return cmd, true
	}
	return c.GetPostForm(commandParam)
}

// @Summary      Bridge a command to the audio daemon
// @Description  Opens one TCP connection to the daemon, writes the command and returns everything the daemon wrote before closing. Transport failures are reported in the body (200) and contain "socket_connect() failed" when the daemon is unreachable.
// @Tags         bridge
// @Produce      plain
// @Param        command  query  string  true  "Daemon command, e.g. 'level -15' or 'amp_on'"
// @Success      200  {string}  string  "daemon response or transport diagnostic"
// @Failure      400  {string}  string  "missing command"
// @Router       /php/main.php [get]
func (h *Handler) bridge(c *gin.Context) {
	command, ok := commandFromRequest(c)
	if !ok {
		c.Data(http.StatusBadRequest, textPlain, []byte(errMissingCommand))
		return
	}

	ans, err := h.services.Router.Execute(c.Request.Context(), command)
	if err != nil {
		var te *daemon.TransportError
		if !errors.As(err, &te) {
			if h.log != nil {
				h.log.Errorw("bridge_exchange_failed", "err", err, "command", command)
			}
			c.Data(http.StatusOK, textPlain, []byte(err.Error()+"\n"))
			return
		}
		if h.log != nil {
			h.log.Warnw("bridge_transport_failed", "err", err, "command", command, "op", te.Op, "endpoint", te.Endpoint.String())
		}
		c.Data(http.StatusOK, textPlain, []byte(te.Diagnostic()))
		return
	}

	if h.log != nil {
		h.log.Debugw("bridge_exchange", "command", command, "bytes", len(ans))
	}
	c.Data(http.StatusOK, textPlain, []byte(ans))
}
