package ai

import "context"

// CallRecorder receives the outcome of every chat completion call
type CallRecorder interface {
	RecordModelCall(backend string, err error)
}

type instrumentedModel struct {
	ChatModel
	backend  string
	recorder CallRecorder
}

// Instrument wraps model so each call is reported to recorder under backend
func Instrument(model ChatModel, backend string, recorder CallRecorder) ChatModel {
	return &instrumentedModel{ChatModel: model, backend: backend, recorder: recorder}
}

func (m *instrumentedModel) CreateChatCompletion(ctx context.Context, messages []Message) (string, error) {
	reply, err := m.ChatModel.CreateChatCompletion(ctx, messages)
	m.recorder.RecordModelCall(m.backend, err)
	return reply, err
}
