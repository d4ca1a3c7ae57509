package job

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobArgs(t *testing.T) {
	t.Parallel()

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("mirror:replicate", nil)
		require.NoError(t, err)
		assert.Equal(t, "mirror:replicate", args.TaskName)
		assert.Empty(t, args.Payload)
		assert.NotNil(t, opts)
	})

	t.Run("payload is marshaled", func(t *testing.T) {
		t.Parallel()

		payload := replicatePayload{RelPath: "acme/u42/file.pdf"}
		args, _, err := buildJobArgs("mirror:replicate", payload)
		require.NoError(t, err)

		var decoded replicatePayload
		require.NoError(t, json.Unmarshal(args.Payload, &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()

		_, _, err := buildJobArgs("mirror:replicate", make(chan int))
		assert.Error(t, err)
	})

	t.Run("insert options are applied", func(t *testing.T) {
		t.Parallel()

		scheduledTime := time.Now().Add(time.Hour)
		args, opts, err := buildJobArgs("mirror:replicate", nil,
			InQueue("mirror"),
			ScheduledAt(scheduledTime),
			MaxAttempts(3),
			Priority(5),
			Tags("mirror", "replicate"),
			UniqueFor(time.Minute),
			UniqueKey("acme/u42/file.pdf"),
		)
		require.NoError(t, err)

		assert.Equal(t, "acme/u42/file.pdf", args.UniqueKey)
		assert.Equal(t, "mirror", opts.Queue)
		assert.Equal(t, scheduledTime, opts.ScheduledAt)
		assert.Equal(t, 3, opts.MaxAttempts)
		assert.Equal(t, 5, opts.Priority)
		assert.Equal(t, []string{"mirror", "replicate"}, opts.Tags)
		assert.Equal(t, time.Minute, opts.UniqueOpts.ByPeriod)
	})

	t.Run("unique key without window is ignored", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("mirror:replicate", nil, UniqueKey("orphan"))
		require.NoError(t, err)
		assert.Empty(t, args.UniqueKey, "unique key only applies together with UniqueFor")
		assert.Zero(t, opts.UniqueOpts.ByPeriod)
	})
}
