package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/graph"
)

func TestDiscussionProcessor_MarksAnswerOnTopLevelCommentOnly(t *testing.T) {
	p := newTestPipeline(t)
	proc := &DiscussionProcessor{Pipeline: p}

	doc := DiscussionDoc{
		ID: "d1", Number: 1, Title: "How do I configure this?",
		Author: UserRef{ID: "u1", Login: "asker"},
		Comments: []DiscussionCommentDoc{
			{
				ID: "c1", Body: "Try this config", IsAnswer: true,
				Author: UserRef{ID: "u2", Login: "helper"},
				Replies: []DiscussionCommentDoc{
					{ID: "c1r1", Body: "Thanks!", IsAnswer: true, Author: UserRef{ID: "u1", Login: "asker"}},
				},
			},
			{ID: "c2", Body: "Unrelated comment", Author: UserRef{ID: "u3", Login: "bystander"}},
		},
	}
	require.NoError(t, proc.Process(context.Background(), nil, doc))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindDiscussion))
	assert.Equal(t, 3, countNodeKind(nodes, graph.KindDiscussionComment), "two top-level comments plus one reply")

	var answerEdges int
	var replyEdges int
	for _, e := range p.Store.Edges() {
		if e.Kind == graph.RelAnswersDiscussion {
			answerEdges++
			assert.Equal(t, "c1", e.FromKey, "only the top-level comment marked isAnswer should link ANSWERS_DISCUSSION")
		}
		if e.Kind == graph.RelHasReply {
			replyEdges++
		}
	}
	assert.Equal(t, 1, answerEdges, "a reply marked isAnswer must not itself produce an ANSWERS_DISCUSSION edge")
	assert.Equal(t, 1, replyEdges)
}

func TestDiscussionProcessor_NoCommentsStillCreatesDiscussion(t *testing.T) {
	p := newTestPipeline(t)
	proc := &DiscussionProcessor{Pipeline: p}

	require.NoError(t, proc.Process(context.Background(), nil, DiscussionDoc{ID: "d1", Author: UserRef{}}))

	nodes := p.Store.Nodes()
	assert.Equal(t, 1, countNodeKind(nodes, graph.KindDiscussion))
	assert.Equal(t, 0, countNodeKind(nodes, graph.KindDiscussionComment))
}
