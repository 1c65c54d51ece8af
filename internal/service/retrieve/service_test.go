package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/embedder/hash"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/storer"
	"github.com/w-h-a/rag/storer/memory"
)

const dim = 128

// unorderedStorer returns canned records regardless of the query.
type unorderedStorer struct {
	records []storer.Record
	err     error
}

func (u unorderedStorer) EnsureCollection(ctx context.Context) error { return nil }

func (u unorderedStorer) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	return nil
}

func (u unorderedStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	return u.records, u.err
}

func (u unorderedStorer) Close() error { return nil }

func seed(t *testing.T, e embedder.Embedder, s storer.Storer, id string, text string, source string) {
	t.Helper()

	vector, err := e.Embed(context.Background(), text, embedder.IntentDocument)
	require.NoError(t, err)

	payload := map[string]string{storer.PayloadText: text}
	if len(source) > 0 {
		payload[storer.PayloadSource] = source
	}

	require.NoError(t, s.Upsert(context.Background(), id, vector, payload))
}

func TestRetrieve_GripperRoundTrip(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	s := memory.NewStorer(storer.WithDimension(dim))

	seed(t, e, s, "doc-gripper", "The gripper uses force feedback.", "ch3")
	seed(t, e, s, "doc-lidar", "Lidar builds point clouds of the environment.", "ch5")
	seed(t, e, s, "doc-slam", "SLAM estimates pose while mapping.", "ch7")
	seed(t, e, s, "doc-ros", "ROS 2 nodes communicate over topics.", "ch1")

	svc := New(e, s, time.Second)

	passages, err := svc.Retrieve(context.Background(), "How does the gripper sense force?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.LessOrEqual(t, len(passages), 3)

	var found bool
	for _, p := range passages {
		if p.Id == "doc-gripper" {
			found = true
			assert.Equal(t, "ch3", p.Source)
		}
	}
	assert.True(t, found)
}

func TestRetrieve_AtMostKDescending(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	s := memory.NewStorer(storer.WithDimension(dim))

	for i := 0; i < 10; i++ {
		seed(t, e, s, fmt.Sprintf("doc-%d", i), fmt.Sprintf("robot arm joint %d torque limits", i), "")
	}

	svc := New(e, s, time.Second)

	for _, k := range []int{1, 2, 5} {
		passages, err := svc.Retrieve(context.Background(), "robot arm torque", k)
		require.NoError(t, err)
		assert.Len(t, passages, k)

		for i := 1; i < len(passages); i++ {
			assert.GreaterOrEqual(t, passages[i-1].Score, passages[i].Score)
		}
	}
}

func TestRetrieve_ReordersAndCapsBackendResults(t *testing.T) {
	s := unorderedStorer{records: []storer.Record{
		{Id: "low", Score: 0.1, Payload: map[string]string{"text": "low"}},
		{Id: "high", Score: 0.9, Payload: map[string]string{"text": "high"}},
		{Id: "mid", Score: 0.5, Payload: map[string]string{"text": "mid"}},
		{Id: "mid2", Score: 0.5, Payload: map[string]string{"text": "mid2"}},
	}}

	svc := New(hash.NewEmbedder(embedder.WithDimension(dim)), s, time.Second)

	passages, err := svc.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	require.Len(t, passages, 3)
	assert.Equal(t, "high", passages[0].Id)
	assert.Equal(t, "mid", passages[1].Id)
	assert.Equal(t, "mid2", passages[2].Id)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	svc := New(e, memory.NewStorer(storer.WithDimension(dim)), time.Second)

	passages, err := svc.Retrieve(context.Background(), "anything at all", 3)
	require.NoError(t, err)
	assert.NotNil(t, passages)
	assert.Empty(t, passages)
}

func TestRetrieve_ExcerptsAreBounded(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	s := memory.NewStorer(storer.WithDimension(dim))

	long := strings.Repeat("actuator ", 200) + strings.Repeat("é", 300)
	seed(t, e, s, "long", long, "ch9")

	passages, err := New(e, s, time.Second).Retrieve(context.Background(), "actuator", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, ExcerptLength, utf8.RuneCountInString(passages[0].Text))
	assert.True(t, strings.HasPrefix(long, passages[0].Text))
}

func TestRetrieve_MissingSourceIsUnknown(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	s := memory.NewStorer(storer.WithDimension(dim))
	seed(t, e, s, "anon", "Servo motors hold position.", "")

	passages, err := New(e, s, time.Second).Retrieve(context.Background(), "servo", 0)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, UnknownSource, passages[0].Source)
}

func TestRetrieve_Validation(t *testing.T) {
	e := hash.NewEmbedder(embedder.WithDimension(dim))
	svc := New(e, memory.NewStorer(storer.WithDimension(dim)), time.Second)

	_, err := svc.Retrieve(context.Background(), "", 3)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Retrieve(context.Background(), "query", -1)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRetrieve_IndexFailure(t *testing.T) {
	upstream := errors.New("qdrant unavailable")
	svc := New(hash.NewEmbedder(embedder.WithDimension(dim)), unorderedStorer{err: upstream}, time.Second)

	_, err := svc.Retrieve(context.Background(), "query", 3)
	assert.ErrorIs(t, err, errs.ErrIndex)
	assert.ErrorIs(t, err, upstream)
}

func TestJoinExcerpts(t *testing.T) {
	assert.Equal(t, "", JoinExcerpts(nil))
	assert.Equal(t, "a\n\nb", JoinExcerpts([]Passage{{Text: "a"}, {Text: "b"}}))
}
