package zk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/zkctl/internal/proto"
)

func TestValidatePath(t *testing.T) {
	valid := []string{"/", "/a", "/a/b", "/app-1/x.y_z"}
	for _, p := range valid {
		assert.NoError(t, validatePath(p, false), "path %q", p)
	}

	invalid := []string{"", "a", "/a/", "/a//b", "/a/./b", "/a/../b"}
	for _, p := range invalid {
		assert.ErrorIs(t, validatePath(p, false), ErrInvalidPath, "path %q", p)
	}

	// Sequential create paths legitimately end in a separator-adjacent
	// prefix, so the trailing-slash rule is relaxed.
	assert.NoError(t, validatePath("/locks/lock-", true))
}

func TestErrorForCodeMapsSentinels(t *testing.T) {
	require.NoError(t, errorForCode(proto.OpCreate, proto.CodeOk))
	assert.ErrorIs(t, errorForCode(proto.OpCreate, proto.CodeNodeExists), ErrNodeExists)
	assert.ErrorIs(t, errorForCode(proto.OpDelete, proto.CodeNoNode), ErrNoNode)
	assert.ErrorIs(t, errorForCode(proto.OpSetData, proto.CodeBadVersion), ErrBadVersion)
	assert.ErrorIs(t, errorForCode(proto.OpDelete, proto.CodeNotEmpty), ErrNotEmpty)
	assert.ErrorIs(t, errorForCode(proto.OpGetData, proto.CodeSessionExpired), ErrSessionExpired)
}

func TestErrorForCodeFallsBackToOpError(t *testing.T) {
	err := errorForCode(proto.OpCreate, proto.CodeUnimplemented)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, proto.OpCreate, opErr.Op)
	assert.Equal(t, proto.CodeUnimplemented, opErr.Code)
	assert.Contains(t, opErr.Error(), "create")
}
