package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascent-learning/ascent_api/shared"
)

func TestLessonAccessOrdering(t *testing.T) {
	store := newTestStore(t)
	svc := newAccessService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	// First lesson of the first course is always open.
	resp, err := svc.CheckLessonAccess("u1", "prog1", "c1", "l1")
	require.NoError(t, err)
	assert.True(t, resp.CanAccess)

	// Second lesson is locked until the first one is passed.
	resp, err = svc.CheckLessonAccess("u1", "prog1", "c1", "l2")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)
	assert.Equal(t, shared.AccessReasonLocked, resp.Reason)

	passLesson(t, store, "u1", "l1", time.Now())

	resp, err = svc.CheckLessonAccess("u1", "prog1", "c1", "l2")
	require.NoError(t, err)
	assert.True(t, resp.CanAccess)

	// Passing a lesson never revokes access to it.
	resp, err = svc.CheckLessonAccess("u1", "prog1", "c1", "l1")
	require.NoError(t, err)
	assert.True(t, resp.CanAccess)
}

func TestLessonAccessDenialReasons(t *testing.T) {
	store := newTestStore(t)
	svc := newAccessService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")

	// Unknown content wins over enrollment; the caller learns the
	// lesson does not exist, not that they are unenrolled.
	resp, err := svc.CheckLessonAccess("u1", "prog1", "c1", "nope")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)
	assert.Equal(t, shared.AccessReasonNotFound, resp.Reason)

	resp, err = svc.CheckLessonAccess("u1", "prog1", "c1", "l1")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)
	assert.Equal(t, shared.AccessReasonNotEnrolled, resp.Reason)

	enrollUser(t, store, "u1", "prog1")

	// l3 exists but belongs to c2.
	resp, err = svc.CheckLessonAccess("u1", "prog1", "c1", "l3")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)
	assert.Equal(t, shared.AccessReasonNotInHierarchy, resp.Reason)
}

func TestCourseAccessRequiresFullPredecessor(t *testing.T) {
	store := newTestStore(t)
	svc := newAccessService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	resp, err := svc.CheckCourseAccess("u1", "prog1", "c1")
	require.NoError(t, err)
	assert.True(t, resp.CanAccess)

	resp, err = svc.CheckCourseAccess("u1", "prog1", "c2")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)
	assert.Equal(t, shared.AccessReasonLocked, resp.Reason)

	// Passing only the last lesson of c1 is not enough; every lesson
	// of the predecessor must be passed.
	passLesson(t, store, "u1", "l2", time.Now())

	resp, err = svc.CheckCourseAccess("u1", "prog1", "c2")
	require.NoError(t, err)
	assert.False(t, resp.CanAccess)

	passLesson(t, store, "u1", "l1", time.Now())

	resp, err = svc.CheckCourseAccess("u1", "prog1", "c2")
	require.NoError(t, err)
	assert.True(t, resp.CanAccess)
}

func TestLessonAccessStoreFailureIsNotADenial(t *testing.T) {
	store := newTestStore(t)
	svc := newAccessService(store)

	seedHierarchy(t, store)
	seedUser(t, store, "u1")
	enrollUser(t, store, "u1", "prog1")

	sqlDB, err := store.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A broken store must surface as an error, never as a NOT_FOUND
	// denial the caller would treat as final.
	resp, err := svc.CheckLessonAccess("u1", "prog1", "c1", "l1")
	require.Error(t, err)
	assert.Nil(t, resp)

	courseResp, err := svc.CheckCourseAccess("u1", "prog1", "c1")
	require.Error(t, err)
	assert.Nil(t, courseResp)
}
