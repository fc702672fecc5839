package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"bookline/models"
	"bookline/services/availability"
	"bookline/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine is the per-session conversation state machine. It classifies
// intent, accumulates slots, and produces a reply plus a declarative
// action list; the host executes the actions. The only availability call
// the engine makes itself is the read-only slot lookup for proposals.
type Engine struct {
	store        SessionStore
	avail        availability.Service
	classifier   IntentClassifier
	serviceTypes []string
	maxChars     int
	clock        func() time.Time

	// Turns for the same session are serialized; concurrent turns for
	// different sessions do not contend. Locks are reference counted
	// and dropped after the last waiting turn finishes.
	sessionMu sync.Mutex
	sessions  map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine wires the conversation engine. serviceTypes feeds the
// service_info reply; maxChars bounds inbound messages.
func NewEngine(store SessionStore, avail availability.Service, classifier IntentClassifier, serviceTypes []string, maxChars int) *Engine {
	return &Engine{
		store:        store,
		avail:        avail,
		classifier:   classifier,
		serviceTypes: serviceTypes,
		maxChars:     maxChars,
		clock:        time.Now,
		sessions:     make(map[string]*sessionLock),
	}
}

func (e *Engine) lockSession(sessionID string) func() {
	e.sessionMu.Lock()
	l, ok := e.sessions[sessionID]
	if !ok {
		l = &sessionLock{}
		e.sessions[sessionID] = l
	}
	l.refs++
	e.sessionMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.sessionMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.sessions, sessionID)
		}
		e.sessionMu.Unlock()
	}
}

// ProcessMessage runs one conversational turn. A missing or expired
// session id starts a fresh session; the generated id is returned in the
// response.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, text string) (*models.ChatResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > e.maxChars {
		return nil, ErrMessageTooLong
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	unlock := e.lockSession(sessionID)
	defer unlock()

	now := e.clock()
	convCtx, found, err := e.store.Get(ctx, sessionID)
	if err != nil {
		// A broken store read is treated like an expired session; the
		// conversation restarts rather than erroring at the user.
		utils.GetLogger().Warn("session load failed, starting fresh",
			zap.String("sessionID", sessionID), zap.Error(err))
		found = false
	}
	if !found {
		convCtx = &models.ConversationContext{
			SessionID: sessionID,
			Stage:     models.StageGreeting,
			CreatedAt: now,
		}
	}

	convCtx.History = append(convCtx.History, models.Message{Role: "user", Text: text, At: now})

	intent, err := e.classifier.Classify(ctx, text, convCtx.History)
	if err != nil {
		// Classification never fails upward; unknown beats broken.
		intent = models.Intent{Type: models.IntentOther, Confidence: 0.2}
	}
	intent = e.carryBookingFlow(intent, convCtx)

	extracted := ExtractSlots(text, now)
	convCtx.Slots.Merge(extracted)
	// A changed date or time invalidates a pending confirmation.
	if extracted.Date != "" || extracted.Time != "" {
		convCtx.AwaitConfirm = false
	}

	resp := &models.ChatResponse{SessionID: sessionID}
	e.respond(ctx, convCtx, intent, text, resp)

	convCtx.Intent = intent
	resp.Intent = intent.Type
	resp.Slots = convCtx.Slots
	resp.Stage = convCtx.Stage
	convCtx.LastActivity = now
	convCtx.History = append(convCtx.History, models.Message{Role: "assistant", Text: resp.Reply, At: now})

	if err := e.store.Put(ctx, sessionID, convCtx); err != nil {
		return nil, err
	}
	return resp, nil
}

// carryBookingFlow keeps a slot-filling conversation on track: a vague
// follow-up ("tomorrow", "14:00") inside an active booking flow is still
// part of the booking even when the classifier reads it as "other".
func (e *Engine) carryBookingFlow(intent models.Intent, convCtx *models.ConversationContext) models.Intent {
	if intent.Type != models.IntentOther {
		return intent
	}
	if convCtx.Intent.Type == models.IntentBook || convCtx.AwaitConfirm {
		return models.Intent{Type: models.IntentBook, Confidence: convCtx.Intent.Confidence, Entities: intent.Entities}
	}
	return intent
}

// respond fills the reply, proposals, actions, and recomputed stage.
// The stage is a derived classification, not a committed transition: a
// message that invalidates a slot moves it backward.
func (e *Engine) respond(ctx context.Context, convCtx *models.ConversationContext, intent models.Intent, text string, resp *models.ChatResponse) {
	switch intent.Type {
	case models.IntentGreeting:
		resp.Reply = welcomeReply
		convCtx.Stage = models.StageGreeting

	case models.IntentHoursInfo:
		resp.Reply = hoursReply(e.avail.Config().Hours)
		convCtx.Stage = models.StageIntentDetection

	case models.IntentServiceInfo:
		resp.Reply = servicesReply(e.serviceTypes)
		convCtx.Stage = models.StageIntentDetection

	case models.IntentCancel:
		convCtx.Slots = models.Slots{}
		convCtx.AwaitConfirm = false
		resp.Reply = cancelReply
		convCtx.Stage = models.StageIntentDetection

	case models.IntentModify:
		convCtx.AwaitConfirm = false
		resp.Reply = modifyReply
		convCtx.Stage = models.StageSlotGathering

	case models.IntentBook:
		e.respondBooking(ctx, convCtx, text, resp)

	default:
		resp.Reply = fallbackReply
		convCtx.Stage = models.StageIntentDetection
	}
}

func (e *Engine) respondBooking(ctx context.Context, convCtx *models.ConversationContext, text string, resp *models.ChatResponse) {
	slots := convCtx.Slots

	// Confirmed pending proposal: emit the side-effecting actions and
	// finish. The host executes them.
	if convCtx.AwaitConfirm && slots.HasRequired() && isAffirmative(text) {
		resp.Actions = append(resp.Actions, models.ChatAction{Type: models.ActionCreateBooking, Data: slots})
		if slots.ClientEmail != "" || slots.ClientPhone != "" {
			resp.Actions = append(resp.Actions, models.ChatAction{Type: models.ActionSendConfirmation, Data: slots})
		}
		resp.Reply = bookedReply(slots)
		convCtx.AwaitConfirm = false
		convCtx.Stage = models.StageCompletion
		return
	}

	// Ask exactly one clarifying question, date before time.
	if slots.Date == "" {
		resp.Reply = askDateReply()
		convCtx.Stage = models.StageSlotGathering
		return
	}

	if slots.Time == "" {
		proposals, err := e.proposals(ctx, slots)
		if err != nil {
			resp.Reply = providerTroubleReply()
			convCtx.Stage = models.StageSlotGathering
			return
		}
		resp.Proposals = proposals
		resp.Reply = askTimeReply(slots.Date, proposals)
		convCtx.Stage = models.StageProposalGeneration
		return
	}

	// Both required slots present: verify the requested window before
	// asking for confirmation.
	allSlots, err := e.daySlots(ctx, slots)
	if err != nil {
		resp.Reply = providerTroubleReply()
		convCtx.Stage = models.StageSlotConfirmation
		return
	}
	if berr := e.requestedWindowError(allSlots, slots); berr != nil {
		switch berr.Kind {
		case availability.KindConflict:
			alternatives := availability.FilterAvailable(allSlots)
			resp.Proposals = alternatives
			resp.Reply = conflictReply(slots, alternatives)
			convCtx.Slots.Time = ""
			convCtx.AwaitConfirm = false
			convCtx.Stage = models.StageProposalGeneration
		default:
			resp.Reply = outOfPolicyReply(berr.Message)
			convCtx.Slots.Time = ""
			convCtx.AwaitConfirm = false
			convCtx.Stage = models.StageSlotGathering
		}
		return
	}

	convCtx.AwaitConfirm = true
	resp.Reply = confirmSlotReply(slots)
	convCtx.Stage = models.StageSlotConfirmation
}

func (e *Engine) proposals(ctx context.Context, slots models.Slots) ([]models.TimeSlot, error) {
	all, err := e.daySlots(ctx, slots)
	if err != nil {
		return nil, err
	}
	return availability.FilterAvailable(all), nil
}

func (e *Engine) daySlots(ctx context.Context, slots models.Slots) ([]models.TimeSlot, error) {
	return e.avail.GetAvailableSlots(ctx, slots.Date, slots.DurationMinutes, 0)
}

// requestedWindowError checks the specific date+time the user asked for
// against the computed day slots. Outside business hours means no slot
// covers that start; a covering slot with conflicts means the window was
// taken.
func (e *Engine) requestedWindowError(daySlots []models.TimeSlot, slots models.Slots) *availability.BookingError {
	if len(daySlots) == 0 {
		return availability.NewOutOfHoursError("we're closed that day")
	}
	for _, s := range daySlots {
		if s.Start.Format("15:04") != slots.Time {
			continue
		}
		if s.Available {
			return nil
		}
		return availability.NewConflictError("that time is already taken")
	}
	// Off-grid times fall outside the generated slot starts; accept them
	// when still inside the open window and let CreateBooking's own
	// recheck have the final word.
	requested, err := time.Parse("15:04", slots.Time)
	if err != nil {
		return availability.NewOutOfHoursError("that doesn't look like a valid time")
	}
	reqMin := requested.Hour()*60 + requested.Minute()
	first, last := daySlots[0], daySlots[len(daySlots)-1]
	openMin := first.Start.Hour()*60 + first.Start.Minute()
	closeMin := last.End.Hour()*60 + last.End.Minute()
	if reqMin < openMin || reqMin >= closeMin {
		return availability.NewOutOfHoursError("that time is outside our opening hours")
	}
	return nil
}
