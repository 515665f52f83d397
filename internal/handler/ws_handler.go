package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"emergency-response-backend/internal/realtime"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeTimeout = 10 * time.Second

// WSHandler upgrades dashboard connections and streams hub events for the
// requested topics. Role topics require a token; patient tracking topics
// (emergency:<code>) are public since the report code itself is the secret.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(hub *realtime.Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS middleware for the REST surface;
			// the ws endpoint carries its own token check instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve handles GET /ws?topics=a,b&token=...
func (h *WSHandler) Serve(c *gin.Context) {
	topics := splitTopics(c.Query("topics"))
	if len(topics) == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "At least one topic is required")
		return
	}

	if err := h.authorizeTopics(topics, c.Query("token")); err != nil {
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(topics)

	// Reader: only used to notice the peer going away.
	go func() {
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Writer: stream hub events until the subscription closes.
	go func() {
		defer conn.Close()
		for evt := range sub.Events() {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				sub.Close()
				return
			}
		}
	}()
}

// authorizeTopics checks that the caller's token grants each requested topic.
func (h *WSHandler) authorizeTopics(topics []string, token string) error {
	var claims *utils.Claims
	if token != "" {
		var err error
		claims, err = utils.ValidateAccessToken(token)
		if err != nil {
			return fmt.Errorf("invalid token")
		}
	}

	for _, topic := range topics {
		if strings.HasPrefix(topic, "emergency:") {
			continue
		}
		if claims == nil {
			return fmt.Errorf("topic %s requires authentication", topic)
		}
		if claims.Role == "admin" {
			continue
		}
		switch {
		case topic == realtime.TopicPolice:
			if claims.Role != "police" {
				return fmt.Errorf("topic %s requires a police account", topic)
			}
		case strings.HasPrefix(topic, "hospital:"):
			if claims.Role != "hospital" || claims.HospitalID == nil ||
				topic != realtime.HospitalTopic(*claims.HospitalID) {
				return fmt.Errorf("topic %s is not yours", topic)
			}
		case strings.HasPrefix(topic, "ambulance:"):
			if claims.Role != "driver" || claims.AmbulanceID == nil ||
				topic != realtime.AmbulanceTopic(*claims.AmbulanceID) {
				return fmt.Errorf("topic %s is not yours", topic)
			}
		default:
			return fmt.Errorf("unknown topic %s", topic)
		}
	}
	return nil
}

func splitTopics(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
