package spectator

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// MatchSource is the read-only view of the live matches the endpoints serve
type MatchSource interface {
	State(matchID string, side core.Side) (game.PlayerView, error)
	Board(matchID string, viewer core.Side) (string, error)
	ActiveMatches() int
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the spectator HTTP handler:
//
//	GET /healthz                      liveness
//	GET /matches                      number of live matches
//	GET /matches/:id/state?side=N     side N's fog-filtered view
//	GET /matches/:id/board?side=N     text board, all tiles when side is omitted
//	GET /matches/:id/watch            websocket of per-turn notices
func NewRouter(source MatchSource, hub *Hub, notFound error, logger zerolog.Logger) *gin.Engine {
	logger = logger.With().Str("component", "Spectator").Logger()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/matches", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"active": source.ActiveMatches()})
	})

	matches := r.Group("/matches/:id")
	matches.GET("/state", stateHandler(source, notFound))
	matches.GET("/board", boardHandler(source, notFound))
	matches.GET("/watch", watchHandler(source, hub, notFound, logger))

	return r
}

func stateHandler(source MatchSource, notFound error) gin.HandlerFunc {
	return func(c *gin.Context) {
		side, ok := parseSide(c, false)
		if !ok {
			return
		}
		view, err := source.State(c.Param("id"), side)
		if err != nil {
			abortWithError(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func boardHandler(source MatchSource, notFound error) gin.HandlerFunc {
	return func(c *gin.Context) {
		side, ok := parseSide(c, true)
		if !ok {
			return
		}
		board, err := source.Board(c.Param("id"), side)
		if err != nil {
			abortWithError(c, err, notFound)
			return
		}
		c.String(http.StatusOK, board)
	}
}

func watchHandler(source MatchSource, hub *Hub, notFound error, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchID := c.Param("id")
		// refuse unknown matches before upgrading
		if _, err := source.Board(matchID, core.NoSide); err != nil {
			abortWithError(c, err, notFound)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn().Err(err).Str("match_id", matchID).Msg("WS upgrade error")
			return
		}

		cl := hub.register(matchID, conn)
		// Spectators only listen; reading detects the close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.unregister(cl)
				return
			}
		}
	}
}

// parseSide reads the side query parameter. When optional is set a missing
// parameter means core.NoSide.
func parseSide(c *gin.Context, optional bool) (core.Side, bool) {
	raw, present := c.GetQuery("side")
	if !present && optional {
		return core.NoSide, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !core.Side(n).Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "side must be 0 or 1"})
		return core.NoSide, false
	}
	return core.Side(n), true
}

func abortWithError(c *gin.Context, err, notFound error) {
	if notFound != nil && errors.Is(err, notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// requestLogger logs every request through zerolog
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
