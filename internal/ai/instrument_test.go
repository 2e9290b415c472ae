package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedCall struct {
	backend string
	err     error
}

type callLog struct {
	calls []recordedCall
}

func (l *callLog) RecordModelCall(backend string, err error) {
	l.calls = append(l.calls, recordedCall{backend: backend, err: err})
}

type replyModel struct {
	reply string
	err   error
}

func (m replyModel) CreateChatCompletion(ctx context.Context, messages []Message) (string, error) {
	return m.reply, m.err
}

func TestInstrument(t *testing.T) {
	log := &callLog{}
	boom := errors.New("boom")

	ok := Instrument(replyModel{reply: "true"}, "openai", log)
	bad := Instrument(replyModel{err: boom}, "openai", log)

	reply, err := ok.CreateChatCompletion(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "true", reply)

	_, err = bad.CreateChatCompletion(context.Background(), nil)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []recordedCall{{backend: "openai"}, {backend: "openai", err: boom}}, log.calls)
}
