package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dospalko/roomsplit/internal/models"
)

func TestSummarizePeriod(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	room := e.room(t, owner)
	a := e.member(t, owner, room.ID, "ana")
	b := e.member(t, owner, room.ID, "bob")

	rent, err := e.bills.Create(ctx, owner.ID, room.ID, CreateBillInput{
		Title:       "Rent",
		AmountCents: 10000,
		Period:      "2026-08",
		Rule:        models.RuleEqual,
	})
	require.NoError(t, err)
	_, err = e.bills.Create(ctx, owner.ID, room.ID, CreateBillInput{
		Title:       "Internet",
		AmountCents: 3001,
		Period:      "2026-08",
		Rule:        models.RuleEqual,
	})
	require.NoError(t, err)

	// A bill in a different period stays out of the totals.
	_, err = e.bills.Create(ctx, owner.ID, room.ID, CreateBillInput{
		Title:       "Groceries",
		AmountCents: 9999,
		Period:      "2026-07",
		Rule:        models.RuleEqual,
	})
	require.NoError(t, err)

	// ana pays her rent share.
	var anaRentShare models.Share
	for _, share := range rent.Shares {
		if share.MemberID == a.ID {
			anaRentShare = share
		}
	}
	_, err = e.payments.SetPaid(ctx, owner.ID, anaRentShare.ID, true)
	require.NoError(t, err)

	summary, err := e.summaries.Summarize(ctx, owner.ID, room.ID, "2026-08")
	require.NoError(t, err)

	assert.Equal(t, int64(13001), summary.TotalCents)
	require.Len(t, summary.PerMember, 2)

	byID := map[string]MemberSummary{}
	var allocated int64
	for _, ms := range summary.PerMember {
		byID[ms.MemberID] = ms
		allocated += ms.AllocatedCents
	}
	assert.Equal(t, summary.TotalCents, allocated)
	assert.Equal(t, anaRentShare.AmountCents, byID[a.ID].PaidCents)
	assert.Zero(t, byID[b.ID].PaidCents)
}

func TestSummarizeEmptyPeriod(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	room := e.room(t, owner)
	e.member(t, owner, room.ID, "ana")

	summary, err := e.summaries.Summarize(ctx, owner.ID, room.ID, "2030-01")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCents)
	require.Len(t, summary.PerMember, 1)
	assert.Zero(t, summary.PerMember[0].AllocatedCents)
}

func TestSummarizeValidatesPeriod(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	room := e.room(t, owner)

	_, err := e.summaries.Summarize(context.Background(), owner.ID, room.ID, "January")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSummarizeRequiresMembership(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	outsider := e.user(t, "outsider@example.com")
	room := e.room(t, owner)

	_, err := e.summaries.Summarize(context.Background(), outsider.ID, room.ID, "2026-08")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSummarizeAfterMemberRemoval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	room := e.room(t, owner)
	a := e.member(t, owner, room.ID, "ana")
	e.member(t, owner, room.ID, "bob")

	_, err := e.bills.Create(ctx, owner.ID, room.ID, CreateBillInput{
		Title:       "Rent",
		AmountCents: 10000,
		Period:      "2026-08",
		Rule:        models.RuleEqual,
	})
	require.NoError(t, err)

	require.NoError(t, e.rooms.RemoveMember(ctx, owner.ID, a.ID))

	// The removed member's shares are gone; the bill total is unchanged.
	summary, err := e.summaries.Summarize(ctx, owner.ID, room.ID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), summary.TotalCents)
	require.Len(t, summary.PerMember, 1)
	assert.Equal(t, int64(5000), summary.PerMember[0].AllocatedCents)
}
