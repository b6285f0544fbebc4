// Package engine orchestrates one assistant turn: hot-reload checks, ordered
// message assembly, call-parameter derivation, dispatch through a
// chat-completion transport, and session persistence.
package engine

import (
	"context"

	"github.com/okonma/valet/pkg/chats/message"
	"github.com/okonma/valet/pkg/config"
	"github.com/okonma/valet/pkg/llm"
	"github.com/okonma/valet/pkg/memory"
	"github.com/okonma/valet/pkg/prompt"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Turn is one entry of a session's history as exposed to callers: the role
// tag ("human" or "ai") and the text content.
type Turn struct {
	Role    string
	Content string
}

// Engine wires the configuration loader, prompt builder, session store, and
// transport into the per-turn pipeline. Turns are processed strictly
// sequentially; the only blocking operation is the transport call.
type Engine struct {
	config    *config.Loader
	prompts   *prompt.Builder
	sessions  *memory.Store
	completer llm.Completer
	logger    *zap.Logger
}

// New creates an Engine. A nil logger disables logging.
func New(loader *config.Loader, prompts *prompt.Builder, sessions *memory.Store, completer llm.Completer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config:    loader,
		prompts:   prompts,
		sessions:  sessions,
		completer: completer,
		logger:    logger,
	}
}

// CheckHotReload checks the configuration and the system template for file
// changes, reloading whichever changed. It reports both outcomes so a UI can
// announce the reload. A reloaded configuration is logged in full.
func (e *Engine) CheckHotReload() (configChanged, templateChanged bool) {
	configChanged, doc := e.config.CheckAndReload()
	templateChanged = e.prompts.CheckAndReload()

	if configChanged && doc != nil {
		if out, err := yaml.Marshal(doc.Raw()); err == nil {
			e.logger.Info("configuration reloaded", zap.String("config", string(out)))
		}
	}

	return configChanged, templateChanged
}

// templateVars builds the variable mapping handed to both templates. These
// are the only variables the assistant supplies.
func templateVars(doc *config.Document, userInput string) map[string]any {
	return map[string]any{
		"user_input": userInput,
		"config":     doc.Raw(),
	}
}

// assemble builds the ordered message sequence for a turn: the optional
// system message, the stored session history in original order, and the
// current human message last. The rendered system prompt is returned
// alongside so the turn log can reuse it instead of rendering again.
func (e *Engine) assemble(userInput, sessionID string) ([]message.Message, string, *config.Document, error) {
	doc, err := e.config.Get()
	if err != nil {
		return nil, "", nil, err
	}

	var (
		msgs      []message.Message
		systemMsg string
	)

	// A system message is included only when the configuration declares a
	// non-empty system_prompt; its content comes from the system template.
	if doc.SystemPrompt != "" {
		systemMsg, err = e.prompts.Render(templateVars(doc, userInput))
		if err != nil {
			return nil, "", nil, err
		}
		msgs = append(msgs, message.System(systemMsg))
	}

	msgs = append(msgs, e.sessions.Session(sessionID).Messages()...)
	msgs = append(msgs, message.Human(userInput))

	return msgs, systemMsg, doc, nil
}

// BuildMessages returns the ordered message sequence that a turn with the
// given input would dispatch: [system?] + history + [current].
func (e *Engine) BuildMessages(userInput, sessionID string) ([]message.Message, error) {
	msgs, _, _, err := e.assemble(userInput, sessionID)
	return msgs, err
}

// SendMessage runs one full turn: assemble the conversation, derive call
// parameters from the configuration, log the call, dispatch, and persist the
// exchange. Transport failures propagate untouched and leave the session
// history unmodified; the human and assistant messages are appended, in that
// order, only after a successful dispatch.
//
// logFullHistory selects the logging mode: true logs the entire assembled
// sequence exactly as sent; false (the default mode) logs only this turn's
// system and user renderings, keeping prior turns out of the log.
func (e *Engine) SendMessage(ctx context.Context, userInput, sessionID string, logFullHistory bool) (string, error) {
	msgs, systemMsg, doc, err := e.assemble(userInput, sessionID)
	if err != nil {
		return "", err
	}

	model := doc.Model
	params := doc.Params()

	if logFullHistory {
		e.logger.Info("chat completion call (full history)",
			zap.String("model", model),
			zap.Any("params", params),
			zap.Any("messages", wireView(msgs)))
	} else {
		current := make([]message.Message, 0, 2)
		if doc.SystemPrompt != "" {
			current = append(current, message.System(systemMsg))
		}

		// The user template may rewrite the raw input, so the logged turn
		// shows what a template-carrying deployment actually injects.
		renderedUser, rerr := e.prompts.RenderUser(templateVars(doc, userInput))
		if rerr != nil {
			return "", rerr
		}
		current = append(current, message.Human(renderedUser))

		e.logger.Info("chat completion call (current turn)",
			zap.String("model", model),
			zap.Any("params", params),
			zap.Any("messages", wireView(current)))
	}

	reply, err := e.completer.Complete(ctx, llm.Request{
		Model:    model,
		Messages: msgs,
		Params:   params,
	})
	if err != nil {
		return "", err
	}

	sess := e.sessions.Session(sessionID)
	sess.Append(message.Human(userInput), message.AI(reply))

	return reply, nil
}

// History returns the session's turns in order as a read-only projection.
func (e *Engine) History(sessionID string) []Turn {
	msgs := e.sessions.Session(sessionID).Messages()

	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = Turn{Role: m.Role.String(), Content: m.Content}
	}
	return turns
}

// ClearHistory empties the session's conversation log.
func (e *Engine) ClearHistory(sessionID string) {
	e.sessions.Clear(sessionID)
}

// wireView projects messages into their API shape for logging.
func wireView(msgs []message.Message) []map[string]string {
	out := make([]map[string]string, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]string{"role": m.Role.Wire(), "content": m.Content}
	}
	return out
}
