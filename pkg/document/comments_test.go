package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/document"
)

func TestComments_ResolvedAreHiddenButKept(t *testing.T) {
	svc := newService(t)
	_, ids := pageWithBlocks(t, svc, "B1")
	blockID := ids[0]

	c1 := svc.AddComment(blockID, document.CommentDraft{UserID: "u1", UserName: "Ana", Content: "typo here"})
	c2 := svc.AddComment(blockID, document.CommentDraft{UserID: "u2", UserName: "Bo", Content: "agreed"})
	require.NotEmpty(t, c1)
	require.NotEmpty(t, c2)

	svc.ResolveComment(blockID, c1)

	visible := svc.BlockComments(blockID)
	require.Len(t, visible, 1)
	assert.Equal(t, c2, visible[0].ID)

	block, _ := svc.Block(blockID)
	require.Len(t, block.Comments, 2)
	assert.True(t, block.Comments[0].Resolved)
	assert.Equal(t, blockID, block.Comments[0].BlockID)
}

func TestComments_UpdateAndDelete(t *testing.T) {
	svc := newService(t)
	_, ids := pageWithBlocks(t, svc, "B1")
	blockID := ids[0]
	c := svc.AddComment(blockID, document.CommentDraft{Content: "first"})

	svc.UpdateComment(blockID, c, "second")
	assert.Equal(t, "second", svc.BlockComments(blockID)[0].Content)

	svc.DeleteComment(blockID, c)
	assert.Empty(t, svc.BlockComments(blockID))
	block, _ := svc.Block(blockID)
	assert.Nil(t, block.Comments)
}

func TestComments_UnchangedIsNotRecorded(t *testing.T) {
	svc := newService(t)
	_, ids := pageWithBlocks(t, svc, "B1")
	c := svc.AddComment(ids[0], document.CommentDraft{Content: "same"})
	svc.ResolveComment(ids[0], c)
	depth := undoDepth(t, svc)

	svc.ResolveComment(ids[0], c)
	svc.UpdateComment(ids[0], c, "same")

	assert.Equal(t, depth, undoDepth(t, svc))
}
