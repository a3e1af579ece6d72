// AngelaMos | 2026
// ws.go

package voice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

const wsReadLimit = 32 << 10

// SocketHandler upgrades authenticated diners onto the voice ordering
// socket. Browsers cannot set an Authorization header on the upgrade
// request, so the access token rides in a query parameter; it is verified
// through the same gateway as every other user/mobile route.
type SocketHandler struct {
	gateway *auth.Gateway
	service *Service
	cfg     config.VoiceConfig
}

func NewSocketHandler(
	gateway *auth.Gateway,
	service *Service,
	cfg config.VoiceConfig,
) *SocketHandler {
	return &SocketHandler{gateway: gateway, service: service, cfg: cfg}
}

func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.ExtractBearerToken(r)
	}
	if token == "" {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	principal, err := h.gateway.ResolvePrincipal(r.Context(), token)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	session, err := h.service.ActiveOwned(r.Context(), principal.ID, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "voice session")
			return
		}
		core.JSONError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Info("voice socket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	conn.SetReadLimit(wsReadLimit)

	h.serve(r.Context(), conn, session)
}

// serve runs the intent loop until the client disconnects, the message
// budget is exhausted, or the session outlives its maximum duration.
func (h *SocketHandler) serve(
	ctx context.Context,
	conn *websocket.Conn,
	session *Session,
) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.MaxSessionDuration)
	defer cancel()

	limiter := rate.NewLimiter(
		rate.Limit(h.cfg.MessagesPerSecond),
		h.cfg.MessageBurst,
	)

	for {
		var intent OrderIntent
		if err := wsjson.Read(ctx, conn, &intent); err != nil {
			if ctx.Err() != nil {
				conn.Close(
					websocket.StatusNormalClosure,
					"session duration limit",
				)
				return
			}
			if websocket.CloseStatus(err) != -1 {
				return
			}
			slog.Info("voice socket read failed",
				"voice_session_id", session.ID,
				"error", err,
			)
			return
		}

		if !limiter.Allow() {
			conn.Close(websocket.StatusPolicyViolation, "rate limited")
			return
		}

		ack := IntentAck{
			Type:      "ack",
			SessionID: session.ID,
			Received:  intent.Text,
			At:        time.Now().UTC(),
		}
		if err := wsjson.Write(ctx, conn, ack); err != nil {
			return
		}
	}
}
