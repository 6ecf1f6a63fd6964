// Farewell Trivia Tournament
//
// A single shared session for an in-person group: participants join from
// their phones, an admin groups them into teams of up to three, and the
// server drives a fixed sequence of timed rounds across two question
// formats, tallying team scores and revealing the final standings (loser
// call-out included) at the end.
//
// Features:
// - WebSocket per connection: /trivia and /trivia/ws
// - Participants join with a display name; admins join with a shared secret
// - Teams of up to 3, shuffled uniformly, immutable until reset
// - Random game sequence of 1-10 rounds across the two formats
// - Per-question countdown broadcast once per second
// - Team scoring by fraction of members answering correctly
// - Admin can force-close a question, end the tournament, or reset everything
// - In-browser QR button to share the session, backed by go-qrcode

package main

import (
	"crypto/subtle"
	_ "embed"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	roleParticipant = "participant"
	roleAdmin       = "admin"
)

// Client is one websocket connection. The id doubles as the participant id
// and is stable for the connection's lifetime only; there is no resume.
type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
	role string
	name string
}

type command struct {
	client *Client
	msg    ClientMessage
}

// questionTimer is the cancellable countdown for the open question. Exactly
// one exists while a question is open; every close path stops it.
type questionTimer struct {
	ticker clockwork.Ticker
	done   chan struct{}
}

// Hub owns the single shared session. All session mutation happens under
// mu: commands arrive through the run loop and timer ticks reacquire the
// lock, so no two transitions ever interleave.
type Hub struct {
	cfg   *Config
	clock clockwork.Clock
	rng   *rand.Rand

	clients map[*Client]bool
	session *Session

	register chan *Client
	unreg    chan *Client
	commands chan command

	mu    sync.RWMutex
	timer *questionTimer
}

func newHub(cfg *Config, clock clockwork.Clock, rng *rand.Rand) *Hub {
	return &Hub{
		cfg:      cfg,
		clock:    clock,
		rng:      rng,
		clients:  make(map[*Client]bool),
		session:  newSession(cfg.rounds),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		commands: make(chan command),
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unreg:
			h.handleDisconnect(c)

		case cmd := <-h.commands:
			h.handleCommand(cmd.client, cmd.msg)
		}
	}
}

// handleDisconnect drops the connection and, for participants, removes them
// from the roster. A pending answer for the open question is discarded
// without affecting anyone else's ability to finish it.
func (h *Hub) handleDisconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}

	if c.role == roleParticipant && h.session.RemoveParticipant(c.id) {
		logf(h.cfg, "TRIVIA: Participant %q disconnected", c.name)
		h.broadcastRoleLocked(roleAdmin, h.participantUpdateLocked())
	}
}

func (h *Hub) handleCommand(c *Client, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A slow client dropped by an earlier send has a closed send channel;
	// commands from it still queued in the run loop are ignored.
	if !h.clients[c] {
		return
	}

	switch msg.Type {
	case "join-participant":
		h.handleJoinParticipantLocked(c, msg)

	case "join-admin":
		h.handleJoinAdminLocked(c, msg)

	case "submit-answer":
		h.handleSubmitAnswerLocked(c, msg)

	case "form-teams", "start-game", "start-next-question", "end-question", "end-game", "set-rounds", "reset-game":
		if c.role != roleAdmin {
			h.sendErrorLocked(c, ErrUnauthorized)
			return
		}
		h.handleAdminCommandLocked(c, msg)

	default:
		// ignore unknown types
	}
}

func (h *Hub) handleJoinParticipantLocked(c *Client, msg ClientMessage) {
	name := strings.TrimSpace(msg.Name)
	if name == "" {
		h.sendErrorLocked(c, invalidCommand("a display name is required to join"))
		return
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	c.role = roleParticipant
	c.name = name
	h.session.AddParticipant(c.id, name)

	h.unicastLocked(c, ParticipantJoinedMessage{
		Type:            "participant-joined",
		ParticipantID:   c.id,
		Name:            name,
		IsActive:        h.session.isActive,
		CurrentQuestion: h.session.currentQuestion,
		TimeLeft:        h.session.timeLeft,
	})
	h.broadcastRoleLocked(roleAdmin, h.participantUpdateLocked())

	logf(h.cfg, "TRIVIA: Participant %q joined as %s", name, c.id)
}

func (h *Hub) handleJoinAdminLocked(c *Client, msg ClientMessage) {
	if subtle.ConstantTimeCompare([]byte(msg.Secret), []byte(h.cfg.adminSecret)) != 1 {
		h.sendErrorLocked(c, ErrUnauthorized)
		return
	}

	c.role = roleAdmin
	h.unicastLocked(c, h.snapshotLocked())

	logf(h.cfg, "TRIVIA: Admin joined as %s", c.id)
}

func (h *Hub) handleSubmitAnswerLocked(c *Client, msg ClientMessage) {
	if c.role != roleParticipant {
		h.sendErrorLocked(c, invalidCommand("join as a participant before answering"))
		return
	}
	if err := h.session.SubmitAnswer(c.id, msg.Answer); err != nil {
		h.sendErrorLocked(c, err)
		return
	}

	h.broadcastRoleLocked(roleAdmin, AnswerReceivedMessage{
		Type:              "answer-received",
		AnswerCount:       h.session.AnswerCount(),
		TotalParticipants: len(h.session.participants),
	})
}

func (h *Hub) handleAdminCommandLocked(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "form-teams":
		if h.session.isActive {
			h.sendErrorLocked(c, invalidCommand("teams cannot be re-formed while a tournament is running"))
			return
		}
		teams, err := h.session.FormTeams(h.rng)
		if err != nil {
			h.sendErrorLocked(c, err)
			return
		}
		h.broadcastLocked(TeamsFormedMessage{
			Type:        "teams-formed",
			Teams:       h.session.TeamSnapshot(),
			TeamsFormed: true,
		})
		h.broadcastRoleLocked(roleAdmin, h.participantUpdateLocked())
		logf(h.cfg, "TRIVIA: Formed %d teams from %d participants", len(teams), len(h.session.participants))

	case "start-game":
		if err := h.session.StartTournament(h.rng); err != nil {
			h.sendErrorLocked(c, err)
			return
		}
		h.broadcastLocked(GameStartedMessage{
			Type:         "game-started",
			GameSequence: h.session.sequenceNames(),
			TotalRounds:  h.session.totalRounds,
		})
		logf(h.cfg, "TRIVIA: Tournament started, %d rounds", h.session.totalRounds)
		h.openNextQuestionLocked()

	case "start-next-question":
		// No-op unless the tournament is active with no open question.
		if !h.session.isActive || h.session.currentQuestion != nil {
			return
		}
		h.openNextQuestionLocked()

	case "end-question":
		h.closeQuestionLocked()

	case "end-game":
		h.endTournamentLocked()

	case "set-rounds":
		if err := h.session.SetTotalRounds(msg.Rounds); err != nil {
			h.sendErrorLocked(c, err)
			return
		}
		h.broadcastLocked(RoundsUpdatedMessage{
			Type:        "rounds-updated",
			TotalRounds: h.session.totalRounds,
		})
		logf(h.cfg, "TRIVIA: Round count set to %d", h.session.totalRounds)

	case "reset-game":
		h.resetLocked()
	}
}

// openNextQuestionLocked advances the sequence and starts the countdown.
// An exhausted sequence ends the tournament instead.
func (h *Hub) openNextQuestionLocked() {
	qs, err := h.session.OpenNextQuestion(h.cfg.questionTimer)
	if err != nil {
		return
	}
	if qs == nil {
		h.endTournamentLocked()
		return
	}

	if qs.NewRound {
		h.broadcastLocked(RoundStartedMessage{
			Type:        "round-started",
			GameType:    qs.Format.Key,
			GameName:    qs.Format.Name,
			RoundNumber: qs.RoundNumber,
			TotalRounds: h.session.totalRounds,
		})
		logf(h.cfg, "TRIVIA: Round %d started (%s)", qs.RoundNumber, qs.Format.Name)
	}

	h.broadcastLocked(QuestionStartedMessage{
		Type:           "question-started",
		Question:       qs.Question,
		GameType:       qs.Format.Key,
		QuestionNumber: qs.QuestionNumber,
		QuestionCount:  qs.QuestionCount,
		RoundNumber:    qs.RoundNumber,
		TotalRounds:    h.session.totalRounds,
		TimeLeft:       h.session.timeLeft,
	})

	h.startTimerLocked(h.session.epoch)

	logf(h.cfg, "TRIVIA: Question %d/%d of round %d opened", qs.QuestionNumber, qs.QuestionCount, qs.RoundNumber)
}

// closeQuestionLocked runs the single scoring pass for the open question.
// The countdown-expiry path and the admin-forced path both land here, and
// whichever loses the race becomes a no-op.
func (h *Hub) closeQuestionLocked() {
	h.stopTimerLocked()

	results, ok := h.session.CloseQuestion()
	if !ok {
		return
	}

	h.broadcastLocked(QuestionEndedMessage{
		Type:            "question-ended",
		CorrectAnswer:   results.CorrectAnswer,
		Results:         results.Results,
		TeamLeaderboard: results.Leaderboard,
		RoundNumber:     results.RoundNumber,
	})

	logf(h.cfg, "TRIVIA: Question closed in round %d, %d answers recorded", results.RoundNumber, len(results.Results))

	if h.session.Exhausted() {
		h.endTournamentLocked()
	}
}

func (h *Hub) endTournamentLocked() {
	h.stopTimerLocked()

	standings, ok := h.session.EndTournament()
	if !ok {
		return
	}

	h.broadcastLocked(GameEndedMessage{
		Type:                 "game-ended",
		FinalTeamLeaderboard: standings.Leaderboard,
		LoserTeam:            standings.Loser,
	})

	logf(h.cfg, "TRIVIA: Tournament ended with %d teams on the board", len(standings.Leaderboard))
}

// resetLocked clears the whole session and evicts everyone, forcing a
// rejoin from the landing state.
func (h *Hub) resetLocked() {
	h.stopTimerLocked()
	h.session = newSession(h.cfg.rounds)

	for client := range h.clients {
		client.role = ""
		client.name = ""
	}

	h.broadcastLocked(GameResetMessage{
		Type:    "game-reset",
		Message: "The session was reset. Please rejoin.",
	})

	logf(h.cfg, "TRIVIA: Session reset")
}

// startTimerLocked begins the one-second countdown cadence for the question
// opened under the given epoch. Any leftover timer is stopped first so two
// live countdowns can never coexist.
func (h *Hub) startTimerLocked(epoch uint64) {
	h.stopTimerLocked()

	t := &questionTimer{
		ticker: h.clock.NewTicker(time.Second),
		done:   make(chan struct{}),
	}
	h.timer = t

	go func() {
		defer t.ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.Chan():
				if !h.tick(epoch) {
					return
				}
			}
		}
	}()
}

func (h *Hub) stopTimerLocked() {
	if h.timer == nil {
		return
	}
	h.timer.ticker.Stop()
	close(h.timer.done)
	h.timer = nil
}

// tick decrements the countdown and closes the question at zero through the
// same path as an admin-forced close. A tick that raced a close and lost
// sees a bumped epoch and does nothing. Returns false once the countdown is
// finished or stale.
func (h *Hub) tick(epoch uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session.epoch != epoch || h.session.currentQuestion == nil {
		return false
	}

	h.session.timeLeft--
	h.broadcastLocked(TimerUpdateMessage{
		Type:     "timer-update",
		TimeLeft: h.session.timeLeft,
	})

	if h.session.timeLeft <= 0 {
		h.closeQuestionLocked()
		return false
	}
	return true
}

func (h *Hub) snapshotLocked() GameStateMessage {
	s := h.session
	return GameStateMessage{
		Type:            "game-state",
		IsActive:        s.isActive,
		Ended:           s.ended,
		TeamsFormed:     s.teamsFormed,
		TotalRounds:     s.totalRounds,
		CompletedRounds: s.completedRounds,
		GameSequence:    s.sequenceNames(),
		Participants:    append([]Participant(nil), s.participants...),
		Teams:           s.TeamSnapshot(),
		CurrentQuestion: s.currentQuestion,
		TimeLeft:        s.timeLeft,
		TeamLeaderboard: s.Leaderboard(),
	}
}

func (h *Hub) participantUpdateLocked() ParticipantUpdateMessage {
	return ParticipantUpdateMessage{
		Type:         "participant-update",
		Participants: append([]Participant(nil), h.session.participants...),
		Teams:        h.session.TeamSnapshot(),
	}
}

func (h *Hub) sendErrorLocked(c *Client, err error) {
	msg := ErrorMessage{Type: "error", Message: err.Error()}
	if se, ok := err.(*SessionError); ok {
		msg.Code = se.Code
	}
	h.unicastLocked(c, msg)
}

// unicastLocked delivers to one client. A client already evicted by an
// earlier full-buffer drop has a closed send channel, so commands still in
// flight from it are ignored rather than sent.
func (h *Hub) unicastLocked(c *Client, msg any) {
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) broadcastRoleLocked(role string, msg any) {
	for client := range h.clients {
		if client.role != role {
			continue
		}
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket handler for the shared session.
func serveWS(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "TRIVIA: upgrade error: %v", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   uuid.New().String(),
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		h.commands <- command{client: c, msg: msg}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the session URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /trivia/qr; strip trailing "/qr" to get the session URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ---- Static file paths ----

//go:embed trivia/index.html
var indexHTML []byte

//go:embed trivia/app.css
var triviaCSS []byte

//go:embed trivia/app.js
var triviaJS []byte

func getIndexHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

func getCssHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(triviaCSS)
	}
}

func getJsHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(triviaJS)
	}
}

// registerTriviaGame sets up routes so that:
//   - $path        → HTML client
//   - $path/ws     → WebSocket for the shared session
//   - $path/qr     → PNG QR code for the session URL
func registerTriviaGame(cfg *Config, path string, mux *httprouter.Router, hub *Hub) {
	go hub.run()

	mux.GET(cfg.prefix+path, getIndexHandler(cfg))

	// Shared assets
	mux.GET(cfg.prefix+"/assets/trivia/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/trivia/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, hub))

	mux.GET(cfg.prefix+path+"/qr", qrHandler)
}
