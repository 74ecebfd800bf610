package ingress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ray-aggregator/api/proto"
	"github.com/cuemby/ray-aggregator/internal/eventbuffer"
	"github.com/cuemby/ray-aggregator/internal/taskmetadata"
)

func TestAddEvents_EnqueuesEventsAndMetadata(t *testing.T) {
	buf := eventbuffer.New(10)
	taskMeta := taskmetadata.New()
	h := New(buf, taskMeta, func() bool { return true })

	req := &proto.AddEventsRequest{
		Events: []*proto.EventData{
			{Id: []byte("1"), Kind: "TASK_EXECUTION_EVENT"},
			{Id: []byte("2"), Kind: "TASK_PROFILE_EVENT"},
		},
		TaskEventsMetadata: map[string]*proto.TaskEventMetadata{
			"attempt-1": {JobId: "job-1"},
		},
	}

	reply, err := h.AddEvents(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, reply)
	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, 1, taskMeta.Len())
}

func TestAddEvents_DisabledDiscardsEverything(t *testing.T) {
	buf := eventbuffer.New(10)
	taskMeta := taskmetadata.New()
	h := New(buf, taskMeta, func() bool { return false })

	req := &proto.AddEventsRequest{
		Events: []*proto.EventData{{Id: []byte("1")}},
		TaskEventsMetadata: map[string]*proto.TaskEventMetadata{
			"attempt-1": {JobId: "job-1"},
		},
	}

	reply, err := h.AddEvents(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, reply)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 0, taskMeta.Len())
}

func TestAddEvents_NilEnabledDefaultsToProcessing(t *testing.T) {
	buf := eventbuffer.New(10)
	h := New(buf, taskmetadata.New(), nil)

	_, err := h.AddEvents(context.Background(), &proto.AddEventsRequest{
		Events: []*proto.EventData{{Id: []byte("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Len())
}
