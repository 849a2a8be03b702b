package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	got     topUp
	balance int
	err     error
}

func (s *stubLedger) GrantCredits(ctx context.Context, clientID, userID int64, amount int) (int, error) {
	s.got = topUp{clientID: clientID, userID: userID, amount: amount}
	return s.balance, s.err
}

func TestParseArgs(t *testing.T) {
	req, err := parseArgs([]string{"-client", "7", "-user", "100", "-amount", "50"})
	require.NoError(t, err)
	assert.Equal(t, topUp{clientID: 7, userID: 100, amount: 50}, req)

	for _, args := range [][]string{
		{"-user", "1", "-amount", "5"},
		{"-client", "7", "-amount", "5"},
		{"-client", "7", "-user", "1", "-amount", "0"},
		{"-client", "x"},
	} {
		_, err := parseArgs(args)
		assert.Error(t, err, args)
	}
}

func TestRunGrantsAndReportsBalance(t *testing.T) {
	ledger := &stubLedger{balance: 55}
	balance, err := run(context.Background(), ledger, nil, topUp{clientID: 7, userID: 100, amount: 50})
	require.NoError(t, err)
	assert.Equal(t, 55, balance)
	assert.Equal(t, topUp{clientID: 7, userID: 100, amount: 50}, ledger.got)

	ledger.err = errors.New("db down")
	_, err = run(context.Background(), ledger, nil, topUp{clientID: 7, userID: 100, amount: 1})
	require.Error(t, err)
}
