package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/bureaubot/catalog"
	"github.com/tbxark/bureaubot/dialogue"
	"github.com/tbxark/bureaubot/intent"
	"github.com/tbxark/bureaubot/llm"
	"github.com/tbxark/bureaubot/metadata"
	"github.com/tbxark/bureaubot/metrics"
	"github.com/tbxark/bureaubot/payload"
	"github.com/tbxark/bureaubot/pdffill"
	"github.com/tbxark/bureaubot/session"
	"github.com/tbxark/bureaubot/structured"
	"github.com/tbxark/bureaubot/validate"
)

// maxHops bounds stage fall-throughs within one turn.
const maxHops = 8

// Orchestrator runs the form-filling conversation. Turns on the same session
// are serialized; turns on different sessions run concurrently.
type Orchestrator struct {
	delegate llm.Delegate
	meta     metadata.Store
	filler   pdffill.Filler
	sessions session.Store

	catalog  *catalog.Catalog
	resolver *catalog.Resolver

	validator *validate.Validator
	dialogue  dialogue.Generator
	payload   *payload.Builder
	intent    intent.Recognizer
	metrics   *metrics.Metrics
	trimmer   Trimmer

	systemPrompt   string
	downloadPrefix string
	now            func() time.Time

	selectChain  *structured.Chain[selectInput, formSuggestion]
	scopingChain *structured.Chain[scopingInput, []string]
	fieldsChain  *structured.Chain[fieldsInput, map[string]string]

	locks *keyedMutex
}

type options struct {
	validator      *validate.Validator
	dialogue       dialogue.Generator
	payload        *payload.Builder
	intent         intent.Recognizer
	metrics        *metrics.Metrics
	trimmer        Trimmer
	policy         llm.Policy
	systemPrompt   string
	downloadPrefix string
	now            func() time.Time
}

type Option func(*options)

func WithValidator(v *validate.Validator) Option {
	return func(o *options) { o.validator = v }
}

func WithDialogueGenerator(g dialogue.Generator) Option {
	return func(o *options) { o.dialogue = g }
}

func WithPayloadBuilder(b *payload.Builder) Option {
	return func(o *options) { o.payload = b }
}

func WithIntentRecognizer(r intent.Recognizer) Option {
	return func(o *options) { o.intent = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithHistoryTrimmer(t Trimmer) Option {
	return func(o *options) { o.trimmer = t }
}

// WithPolicy sets the retry policy for JSON-returning calls.
func WithPolicy(p llm.Policy) Option {
	return func(o *options) { o.policy = p }
}

func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithDownloadPrefix sets the URL prefix of artifact links in replies.
func WithDownloadPrefix(prefix string) Option {
	return func(o *options) { o.downloadPrefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds an orchestrator and loads the form catalog once.
func New(
	ctx context.Context,
	delegate llm.Delegate,
	meta metadata.Store,
	filler pdffill.Filler,
	sessions session.Store,
	opts ...Option,
) (*Orchestrator, error) {
	o := options{
		trimmer:        DefaultTrimmer,
		policy:         llm.DefaultPolicy(),
		systemPrompt:   dialogue.DefaultSystemPrompt,
		downloadPrefix: defaultDownloadURL,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	cat, err := meta.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("Loaded form catalog", "forms", cat.Len())

	orch := &Orchestrator{
		delegate:       delegate,
		meta:           meta,
		filler:         filler,
		sessions:       sessions,
		catalog:        cat,
		resolver:       catalog.NewResolver(cat),
		validator:      o.validator,
		dialogue:       o.dialogue,
		payload:        o.payload,
		intent:         o.intent,
		metrics:        o.metrics,
		trimmer:        o.trimmer,
		systemPrompt:   o.systemPrompt,
		downloadPrefix: o.downloadPrefix,
		now:            o.now,
		locks:          newKeyedMutex(),
	}
	if orch.validator == nil {
		orch.validator = validate.New(delegate, validate.WithSystemPrompt(o.systemPrompt))
	}
	if orch.dialogue == nil {
		orch.dialogue = dialogue.NewFailbackGenerator(
			dialogue.NewDelegateGenerator(delegate, dialogue.WithDialogueSystemPrompt(o.systemPrompt)),
			&dialogue.LocalGenerator{},
		)
	}
	if orch.payload == nil {
		if orch.payload, err = payload.NewBuilder(delegate, payload.WithPolicy(o.policy)); err != nil {
			return nil, fmt.Errorf("create payload builder: %w", err)
		}
	}
	if orch.intent == nil {
		orch.intent = intent.NewLocalRecognizer()
	}
	if orch.selectChain, err = structured.NewChain[selectInput, formSuggestion](delegate, orch.selectFormPrompt, o.policy, structured.WithSchemaHint()); err != nil {
		return nil, err
	}
	if orch.scopingChain, err = structured.NewChain[scopingInput, []string](delegate, orch.scopingPrompt, o.policy); err != nil {
		return nil, err
	}
	// One batch attempt: a failed batch falls back to per-field rewrites.
	if orch.fieldsChain, err = structured.NewChain[fieldsInput, map[string]string](delegate, orch.fieldQuestionsPrompt, llm.Policy{Attempts: 1}); err != nil {
		return nil, err
	}
	return orch, nil
}

// turn is the working state of one Handle call. sess is a clone of the
// stored session and is only persisted when the turn succeeds.
type turn struct {
	sess    *session.Session
	history []*schema.Message
}

// Handle processes one user message for the session and returns the reply.
// Collaborator failures do not surface as errors: the reply falls back to a
// generic clarification, Metadata["error"] carries the cause and the stored
// session is left as it was.
func (o *Orchestrator) Handle(ctx context.Context, sessionID, message string) (*Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	unlock := o.locks.Lock(sessionID)
	defer unlock()

	ctx = callbacks.EnsureRunInfo(ctx, "BureauBot", "Agent")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"session_id": sessionID,
		"input":      message,
	})
	start := o.now()

	stored, created, err := session.GetOrCreate(ctx, o.sessions, sessionID, start)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, fmt.Errorf("load session: %w", err)
	}
	if created {
		slog.Debug("Created session", "session_id", sessionID)
	}

	sess := stored.Clone()
	if !sess.Stage.Valid() {
		slog.Warn("Session had an unknown stage, restarting selection", "session_id", sessionID, "stage", sess.Stage)
		sess.RestartSelection()
	}
	stage := sess.Stage
	t := &turn{sess: sess, history: o.trimmer.Trim(sess.History)}

	text, err := o.run(ctx, t, message)
	o.metrics.ObserveTurn(string(stage), o.now().Sub(start), err)
	if err != nil {
		callbacks.OnError(ctx, err)
		return o.handleError(err, stored), nil
	}

	sess.History = o.trimmer.Trim(appendHistory(sess.History,
		schema.UserMessage(message),
		schema.AssistantMessage(text, nil),
	))
	sess.UpdatedAt = o.now()
	if err := o.sessions.Save(ctx, sess); err != nil {
		callbacks.OnError(ctx, err)
		return nil, fmt.Errorf("save session: %w", err)
	}

	resp := &Response{
		SessionID:    sessionID,
		Reply:        text,
		Stage:        sess.Stage,
		ArtifactPath: sess.ArtifactPath,
	}
	callbacks.OnEnd(ctx, map[string]any{
		"response": resp,
		"stage":    string(sess.Stage),
	})
	return resp, nil
}

// Reset discards the session.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	unlock := o.locks.Lock(sessionID)
	defer unlock()
	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Catalog returns the catalog loaded at construction.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

func (o *Orchestrator) run(ctx context.Context, t *turn, input string) (string, error) {
	for hop := 0; hop < maxHops; hop++ {
		slog.Debug("Dispatching stage", "session_id", t.sess.ID, "stage", t.sess.Stage)
		st, err := o.dispatch(ctx, t, input)
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", t.sess.Stage, err)
		}
		if !st.cont {
			return st.reply, nil
		}
		input = st.input
	}
	return "", fmt.Errorf("stage %s: too many transitions in one turn", t.sess.Stage)
}

func (o *Orchestrator) dispatch(ctx context.Context, t *turn, input string) (step, error) {
	switch t.sess.Stage {
	case session.StageSelectForm:
		return o.selectForm(ctx, t, input)
	case session.StageConfirmForm:
		return o.confirmForm(ctx, t, input)
	case session.StageScoping:
		return o.scoping(ctx, t, input)
	case session.StageListFields:
		return o.listFields(ctx, t, input)
	case session.StageAwaitFillReady:
		return o.awaitFillReady(ctx, t, input)
	case session.StageFillFields:
		return o.fillFields(ctx, t, input)
	case session.StageReviewAnswers:
		return o.reviewAnswers(ctx, t, input)
	case session.StageComplete:
		return reply(sessionFinished), nil
	default:
		return step{}, fmt.Errorf("no handler for stage %q", t.sess.Stage)
	}
}

func (o *Orchestrator) recognize(ctx context.Context, input string) intent.Intent {
	in, err := o.intent.Recognize(ctx, input)
	if err != nil {
		slog.Warn("Intent recognition failed", "error", err)
		return intent.None
	}
	return in
}

func (o *Orchestrator) handleError(err error, stored *session.Session) *Response {
	slog.Error("Turn failed", "session_id", stored.ID, "error", err)
	stage := stored.Stage
	if !stage.Valid() {
		stage = session.StageSelectForm
	}
	return &Response{
		SessionID:    stored.ID,
		Reply:        fallbackReply,
		Stage:        stage,
		ArtifactPath: stored.ArtifactPath,
		Metadata: map[string]string{
			"error": err.Error(),
		},
	}
}
