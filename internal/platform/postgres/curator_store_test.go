package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

var curatorCols = []string{
	"email", "name", "subject_id", "department_id", "role_id", "mentor_email",
	"confirmed", "chat_id", "password_hash", "subject", "department", "role",
}

func TestCuratorStore_GetByEmail(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(c.email) = LOWER($1)")).
		WithArgs("anna@example.com").
		WillReturnRows(sqlmock.NewRows(curatorCols).
			AddRow("anna@example.com", "Anna", int64(1), int64(2), int64(5), "", true, int64(777), "hash",
				"Math", "North", "Mentor"))

	c, err := NewPostgresCuratorStore(db, quietLogger()).GetByEmail(context.Background(), " anna@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Anna", c.Name)
	assert.Equal(t, int64(5), c.RoleID)
	require.NotNil(t, c.ChatID)
	assert.Equal(t, int64(777), *c.ChatID)
	assert.Equal(t, "Mentor", c.RoleLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCuratorStore_GetByEmail_NoChatID(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM curators c").
		WillReturnRows(sqlmock.NewRows(curatorCols).
			AddRow("bob@example.com", "Bob", int64(1), int64(2), int64(1), "anna@example.com", false, nil, "",
				"Math", "North", "Curator"))

	c, err := NewPostgresCuratorStore(db, quietLogger()).GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, c.ChatID)
	assert.False(t, c.HasChatID())
	assert.Equal(t, "anna@example.com", c.MentorEmail)
}

func TestCuratorStore_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM curators c").WillReturnRows(sqlmock.NewRows(curatorCols))

	_, err := NewPostgresCuratorStore(db, quietLogger()).GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrCuratorNotFound)
}

func TestCuratorStore_ListInScope_EmptyScopeSkipsQuery(t *testing.T) {
	db, mock := newMock(t)

	got, err := NewPostgresCuratorStore(db, quietLogger()).
		ListInScope(context.Background(), policy.Scope{Kind: policy.ScopeNone}, store.RecipientFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCuratorStore_ListInScope_MenteesWithGroupFilter(t *testing.T) {
	db, mock := newMock(t)

	scope := policy.Scope{Kind: policy.ScopeMentees, SubjectID: 1, DepartmentID: 2, MentorEmail: "anna@example.com"}
	filter := store.RecipientFilter{SubjectID: 1, DepartmentIDs: []int64{2}, RoleIDs: []int64{1}}

	mock.ExpectQuery(regexp.QuoteMeta(
		"LOWER(c.mentor_email) = LOWER($3)) AND c.subject_id = $4 AND c.department_id = ANY($5) AND c.role_id = ANY($6)")).
		WithArgs(int64(1), int64(2), "anna@example.com", int64(1), []int64{2}, []int64{1}).
		WillReturnRows(sqlmock.NewRows(curatorCols).
			AddRow("bob@example.com", "Bob", int64(1), int64(2), int64(1), "anna@example.com", true, int64(5), "",
				"Math", "North", "Curator"))

	got, err := NewPostgresCuratorStore(db, quietLogger()).ListInScope(context.Background(), scope, filter)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob@example.com", got[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCuratorStore_ListInScope_SingleEmailWins(t *testing.T) {
	db, mock := newMock(t)

	filter := store.RecipientFilter{
		SingleEmail: "Bob@Example.com",
		Emails:      []string{"other@example.com"},
		RoleIDs:     []int64{1},
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE TRUE AND LOWER(c.email) = LOWER($1) ORDER BY")).
		WithArgs("Bob@Example.com").
		WillReturnRows(sqlmock.NewRows(curatorCols))

	got, err := NewPostgresCuratorStore(db, quietLogger()).
		ListInScope(context.Background(), policy.Scope{Kind: policy.ScopeAll}, filter)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCuratorStore_ListInScope_EmailList(t *testing.T) {
	db, mock := newMock(t)

	scope := policy.Scope{Kind: policy.ScopeSubjectRoles, SubjectID: 4, RoleIDs: []int64{1}}
	filter := store.RecipientFilter{Emails: []string{" A@x.io", "b@x.io"}, SubjectID: 9}

	mock.ExpectQuery(regexp.QuoteMeta("c.role_id = ANY($2)) AND LOWER(c.email) = ANY($3) ORDER BY")).
		WithArgs(int64(4), []int64{1}, []string{"a@x.io", "b@x.io"}).
		WillReturnRows(sqlmock.NewRows(curatorCols))

	_, err := NewPostgresCuratorStore(db, quietLogger()).ListInScope(context.Background(), scope, filter)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCuratorStore_NamesByChatID(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE chat_id = ANY($1)")).
		WithArgs([]int64{10, 11}).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id", "name"}).AddRow(int64(10), "Bob"))

	names, err := NewPostgresCuratorStore(db, quietLogger()).NamesByChatID(context.Background(), []int64{10, 11})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{10: "Bob"}, names)
}

func TestCuratorStore_NamesByChatID_Empty(t *testing.T) {
	db, mock := newMock(t)

	names, err := NewPostgresCuratorStore(db, quietLogger()).NamesByChatID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
