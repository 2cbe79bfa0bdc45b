package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// Step is a position in the requirement-refinement flow.
type Step string

const (
	StepDetails         Step = "details"
	StepAnalysis        Step = "analysis"
	StepConversation    Step = "conversation"
	StepRecommendations Step = "recommendations"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnState tracks a submitted user message: Pending while the backend is
// answering, then Settled, or Failed when a local fallback answered instead.
type TurnState string

const (
	TurnPending TurnState = "pending"
	TurnSettled TurnState = "settled"
	TurnFailed  TurnState = "failed"
)

// ReplyKind tells where an assistant message came from.
type ReplyKind string

const (
	ReplyGreeting ReplyKind = "greeting"
	ReplyAI       ReplyKind = "ai"
	ReplyFollowUp ReplyKind = "follow_up"
	ReplyFallback ReplyKind = "fallback"
	ReplyHistory  ReplyKind = "history"
)

// Message is one entry of the visible conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	// State and Reason are set on user messages only.
	State  TurnState `json:"state,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Kind   ReplyKind `json:"kind,omitempty"`
}

// ConversationState is a copy of the engine state.
type ConversationState struct {
	Step                   Step            `json:"step"`
	Project                *models.Project `json:"project,omitempty"`
	Analysis               string          `json:"analysis,omitempty"`
	Messages               []Message       `json:"messages"`
	CanViewRecommendations bool            `json:"canViewRecommendations"`
}

// ConversationEngine drives details -> analysis -> conversation ->
// recommendations for one project session.
type ConversationEngine struct {
	api   remote.API
	sched *Scheduler
	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	step     Step
	project  *models.Project
	analysis string
	messages []Message
	creating bool
	// details is what created (or resumed) the project.
	details models.CreateProjectInput
	// epoch invalidates delayed follow-ups scheduled before a Reset or Resume.
	epoch int
}

func NewConversationEngine(api remote.API, sched *Scheduler) *ConversationEngine {
	return &ConversationEngine{
		api:   api,
		sched: sched,
		now:   time.Now,
		newID: uuid.NewString,
		step:  StepDetails,
	}
}

// SubmitDetails creates the project and moves to the analysis step. A
// session creates at most one project: submitting again after navigating
// back reuses it, and edited details are rejected since the backend has no
// way to update them.
func (e *ConversationEngine) SubmitDetails(ctx context.Context, input models.CreateProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.UserRequirements = strings.TrimSpace(input.UserRequirements)
	input.CredentialID = strings.TrimSpace(input.CredentialID)

	e.mu.Lock()
	if e.step != StepDetails {
		e.mu.Unlock()
		return nil, appErr.Validation("project details can only be submitted from the details step")
	}
	switch {
	case input.Name == "":
		e.mu.Unlock()
		return nil, appErr.Validation("project name is required")
	case input.UserRequirements == "":
		e.mu.Unlock()
		return nil, appErr.Validation("requirements are required")
	case input.CredentialID == "":
		e.mu.Unlock()
		return nil, appErr.Validation("select a cloud credential")
	}
	if e.project != nil {
		if field, changed := e.detailsChanged(input); changed {
			e.mu.Unlock()
			return nil, appErr.Validation("the project was already created; "+field+" can no longer be changed").
				WithMeta("project_id", e.project.ID).
				WithMeta("field", field)
		}
		e.step = StepAnalysis
		p := *e.project
		e.mu.Unlock()
		return &p, nil
	}
	if e.creating {
		e.mu.Unlock()
		return nil, appErr.New(appErr.CodeConflict, "project creation already in progress")
	}
	e.creating = true
	e.mu.Unlock()

	logger.L().Info("create project", zap.String("name", input.Name))
	p, err := e.api.CreateProject(ctx, input)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.creating = false
	if err != nil {
		logger.L().Error("create project failed", zap.String("name", input.Name), zap.Error(err))
		return nil, err
	}
	if p.UserRequirements == "" {
		p.UserRequirements = input.UserRequirements
	}
	e.project = p
	e.details = input
	e.analysis = Analysis(p.Name, p.UserRequirements)
	e.messages = []Message{e.assistant(ClarifyingQuestions, ReplyGreeting)}
	e.step = StepAnalysis
	logger.L().Info("project created", zap.String("project_id", p.ID))

	out := *p
	return &out, nil
}

// Continue moves from analysis to conversation.
func (e *ConversationEngine) Continue() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.step != StepAnalysis {
		return appErr.Validation("continue is only available from the analysis step")
	}
	e.step = StepConversation
	return nil
}

// Back steps from analysis to details or from conversation to analysis.
func (e *ConversationEngine) Back() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.step {
	case StepAnalysis:
		e.step = StepDetails
	case StepConversation:
		e.step = StepAnalysis
	default:
		return appErr.Validation("cannot go back from the " + string(e.step) + " step")
	}
	return nil
}

// ToRecommendations leaves the conversation once at least one exchange happened.
func (e *ConversationEngine) ToRecommendations() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.step != StepConversation {
		return appErr.Validation("recommendations are reached from the conversation step")
	}
	if !e.hasExchange() {
		return appErr.Validation("answer at least one question before viewing recommendations")
	}
	e.step = StepRecommendations
	return nil
}

// Send submits a user message and returns the assistant message answering
// it. Backend failures are answered by a local fallback and never returned.
func (e *ConversationEngine) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)

	e.mu.Lock()
	if e.step != StepConversation {
		e.mu.Unlock()
		return nil, appErr.Validation("messages can only be sent during the conversation step")
	}
	if text == "" {
		e.mu.Unlock()
		return nil, appErr.Validation("message is empty")
	}
	user := Message{ID: e.newID(), Role: RoleUser, Content: text, CreatedAt: e.now(), State: TurnPending}
	e.messages = append(e.messages, user)
	projectID := e.project.ID
	requirements := e.project.UserRequirements
	epoch := e.epoch
	e.mu.Unlock()

	reply, err := e.api.AddConversationTurn(ctx, projectID, text)
	if err == nil && strings.TrimSpace(reply.Response) == "" {
		err = appErr.New(appErr.CodeUnavailable, "empty response from assistant")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		// Reset while the backend was answering; the turn belongs to a discarded conversation.
		return nil, appErr.New(appErr.CodeConflict, "conversation was reset")
	}
	idx := e.indexOf(user.ID)

	if err != nil {
		logger.L().Warn("conversation turn failed, answering locally",
			zap.String("project_id", projectID), zap.Error(err))
		e.messages[idx].State = TurnFailed
		e.messages[idx].Reason = err.Error()
		msg := e.assistant(Fallback(text, requirements), ReplyFallback)
		e.messages = append(e.messages, msg)
		return &msg, nil
	}

	e.messages[idx].State = TurnSettled
	msg := e.assistant(reply.Response, ReplyAI)
	e.messages = append(e.messages, msg)

	if !strings.Contains(reply.Response, "?") {
		if q, ok := FollowUp(text, len(e.messages)); ok {
			e.sched.After(FollowUpDelay, func(context.Context) {
				e.appendFollowUp(epoch, q)
			})
		}
	}
	return &msg, nil
}

func (e *ConversationEngine) appendFollowUp(epoch int, q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		return
	}
	e.messages = append(e.messages, e.assistant(q, ReplyFollowUp))
}

// Resume opens the engine on an existing project at the conversation step.
func (e *ConversationEngine) Resume(snap *models.ProjectSnapshot) {
	convs := append([]models.Conversation(nil), snap.Conversations...)
	sort.SliceStable(convs, func(i, j int) bool { return convs[i].Timestamp.Before(convs[j].Timestamp) })

	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	p := snap.Project
	e.project = &p
	e.details = models.CreateProjectInput{Name: p.Name, Description: p.Description, UserRequirements: p.UserRequirements}
	if p.CloudCredentialID != nil {
		e.details.CredentialID = *p.CloudCredentialID
	}
	e.analysis = Analysis(p.Name, p.UserRequirements)
	e.messages = nil
	if len(convs) == 0 {
		e.messages = append(e.messages, e.assistant(ClarifyingQuestions, ReplyGreeting))
	}
	for _, c := range convs {
		e.messages = append(e.messages,
			Message{ID: c.ID + ":user", Role: RoleUser, Content: c.UserMessage, CreatedAt: c.Timestamp, State: TurnSettled},
			Message{ID: c.ID + ":assistant", Role: RoleAssistant, Content: c.AIResponse, CreatedAt: c.Timestamp, Kind: ReplyHistory},
		)
	}
	e.step = StepConversation
}

// Reset returns the engine to an empty details step.
func (e *ConversationEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.step = StepDetails
	e.project = nil
	e.details = models.CreateProjectInput{}
	e.analysis = ""
	e.messages = nil
}

// ProjectID is empty until the details step created the project.
func (e *ConversationEngine) ProjectID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return ""
	}
	return e.project.ID
}

func (e *ConversationEngine) State() ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := ConversationState{
		Step:                   e.step,
		Analysis:               e.analysis,
		Messages:               append([]Message{}, e.messages...),
		CanViewRecommendations: e.step == StepConversation && e.hasExchange(),
	}
	if e.project != nil {
		p := *e.project
		st.Project = &p
	}
	return st
}

// Step returns the current step.
func (e *ConversationEngine) Step() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// detailsChanged compares a resubmission with the details the project was
// created from. A resumed project without a credential accepts any.
func (e *ConversationEngine) detailsChanged(in models.CreateProjectInput) (string, bool) {
	switch {
	case in.Name != e.details.Name:
		return "name", true
	case in.UserRequirements != e.details.UserRequirements:
		return "requirements", true
	case strings.TrimSpace(in.Description) != strings.TrimSpace(e.details.Description):
		return "description", true
	case e.details.CredentialID != "" && in.CredentialID != e.details.CredentialID:
		return "credential", true
	}
	return "", false
}

func (e *ConversationEngine) hasExchange() bool {
	for _, m := range e.messages {
		if m.Role == RoleUser && m.State != TurnPending {
			return true
		}
	}
	return false
}

func (e *ConversationEngine) indexOf(id string) int {
	for i := range e.messages {
		if e.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *ConversationEngine) assistant(content string, kind ReplyKind) Message {
	return Message{ID: e.newID(), Role: RoleAssistant, Content: content, CreatedAt: e.now(), Kind: kind}
}
