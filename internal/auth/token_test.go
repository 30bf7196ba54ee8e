package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	p := Principal{EmployeeID: "e1", ShopID: "s1", Role: "cashier", Permissions: []string{PermOrders}}

	raw, exp, err := tokens.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestVerify_RejectsOtherSecretAndExpired(t *testing.T) {
	raw, _, err := NewTokens("a", time.Hour).Issue(Principal{EmployeeID: "e1"})
	require.NoError(t, err)

	_, err = NewTokens("b", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("a", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err = expired.Issue(Principal{EmployeeID: "e1"})
	require.NoError(t, err)
	_, err = NewTokens("a", time.Minute).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalCan(t *testing.T) {
	assert.True(t, Principal{Role: RoleOwner}.Can(PermStaff))
	assert.True(t, Principal{Role: "cashier", Permissions: []string{PermPayments}}.Can(PermPayments))
	assert.False(t, Principal{Role: "barista"}.Can(PermPayments))
}
