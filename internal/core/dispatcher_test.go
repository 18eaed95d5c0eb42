package core

import (
	"context"
	"testing"

	"songbird/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoAgent struct {
	name string
}

func (a *echoAgent) Name() string { return a.name }

func (a *echoAgent) Process(ctx context.Context, msg *model.InternalMessage) (string, error) {
	return a.name + ":" + msg.Text, nil
}

func TestDispatchRoutesToRecommendAgent(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	d.RegisterAgent(&echoAgent{name: "Other"})
	d.RegisterAgent(&echoAgent{name: DefaultAgent})

	reply, err := d.Dispatch(context.Background(), &model.InternalMessage{Platform: "api", Text: "Imagine"})
	require.NoError(t, err)
	assert.Equal(t, "RecommendAgent:Imagine", reply)
}

func TestDispatchWithoutAgent(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	reply, err := d.Dispatch(context.Background(), &model.InternalMessage{Text: "Imagine"})
	require.NoError(t, err)
	assert.Contains(t, reply, "not available")
}
