package jobs

import (
	"testing"
	"time"

	"freightmarket-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"open to assigned", models.JobStatusOpen, models.JobStatusAssigned, true},
		{"open to cancelled", models.JobStatusOpen, models.JobStatusCancelled, true},
		{"open to completed skips the middle", models.JobStatusOpen, models.JobStatusCompleted, false},
		{"open to in_progress skips assignment", models.JobStatusOpen, models.JobStatusInProgress, false},
		{"assigned to in_progress", models.JobStatusAssigned, models.JobStatusInProgress, true},
		{"assigned to completed skips in_progress", models.JobStatusAssigned, models.JobStatusCompleted, false},
		{"assigned to cancelled", models.JobStatusAssigned, models.JobStatusCancelled, true},
		{"in_progress to delivered", models.JobStatusInProgress, models.JobStatusDelivered, true},
		{"in_progress to completed", models.JobStatusInProgress, models.JobStatusCompleted, true},
		{"in_progress to cancelled", models.JobStatusInProgress, models.JobStatusCancelled, true},
		{"delivered to completed", models.JobStatusDelivered, models.JobStatusCompleted, true},
		{"delivered back to in_progress", models.JobStatusDelivered, models.JobStatusInProgress, false},
		{"completed is terminal", models.JobStatusCompleted, models.JobStatusCancelled, false},
		{"cancelled is terminal", models.JobStatusCancelled, models.JobStatusOpen, false},
		{"no self loop", models.JobStatusOpen, models.JobStatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.JobStatusCompleted))
	assert.True(t, IsTerminal(models.JobStatusCancelled))
	assert.False(t, IsTerminal(models.JobStatusOpen))
	assert.False(t, IsTerminal(models.JobStatusAssigned))
	assert.False(t, IsTerminal(models.JobStatusDelivered))
}

func TestCapabilities(t *testing.T) {
	poster := Actor{ID: "u-poster", Role: models.RoleDispatcher}
	trucker := Actor{ID: "u-trucker", Role: models.RoleTrucker}
	admin := Actor{ID: "u-admin", Role: models.RoleAdmin}
	stranger := Actor{ID: "u-stranger", Role: models.RoleShipper}

	job := &models.Job{PostedBy: poster.ID, AssignedTo: trucker.ID}

	assert.True(t, CanPostJob(poster))
	assert.True(t, CanPostJob(Actor{Role: models.RoleShipper}))
	assert.False(t, CanPostJob(trucker))
	assert.False(t, CanPostJob(admin))

	assert.True(t, CanModifyJob(poster, job))
	assert.True(t, CanModifyJob(admin, job))
	assert.False(t, CanModifyJob(trucker, job))
	assert.False(t, CanModifyJob(stranger, job))

	assert.True(t, CanTransitionJob(poster, job))
	assert.True(t, CanTransitionJob(trucker, job))
	assert.True(t, CanTransitionJob(admin, job))
	assert.False(t, CanTransitionJob(stranger, job))

	// An unassigned job only the poster and admin can touch.
	unassigned := &models.Job{PostedBy: poster.ID}
	assert.False(t, CanTransitionJob(Actor{ID: "", Role: models.RoleTrucker}, unassigned))

	assert.True(t, CanDecideBid(poster, job))
	assert.True(t, CanDecideBid(admin, job))
	assert.False(t, CanDecideBid(trucker, job))

	assert.True(t, CanPlaceBid(trucker))
	assert.False(t, CanPlaceBid(poster))
}

func TestValidateNewJob(t *testing.T) {
	valid := func() *models.Job {
		return &models.Job{
			Title:       "Produce to Atlanta",
			Description: "Reefer load, two pallets",
			Pickup:      models.Stop{Location: "Miami, FL", Date: time.Now().Add(24 * time.Hour)},
			Delivery:    models.Stop{Location: "Atlanta, GA", Date: time.Now().Add(48 * time.Hour)},
			Cargo:       models.Cargo{Type: "refrigerated"},
			Payment:     models.Payment{Amount: 1800},
		}
	}

	require.Nil(t, ValidateNewJob(valid()))

	tests := []struct {
		name   string
		mutate func(*models.Job)
	}{
		{"missing title", func(j *models.Job) { j.Title = " " }},
		{"missing description", func(j *models.Job) { j.Description = "" }},
		{"missing pickup location", func(j *models.Job) { j.Pickup.Location = "" }},
		{"missing pickup date", func(j *models.Job) { j.Pickup.Date = time.Time{} }},
		{"missing delivery location", func(j *models.Job) { j.Delivery.Location = "" }},
		{"missing delivery date", func(j *models.Job) { j.Delivery.Date = time.Time{} }},
		{"missing cargo type", func(j *models.Job) { j.Cargo.Type = "" }},
		{"zero payment", func(j *models.Job) { j.Payment.Amount = 0 }},
		{"negative payment", func(j *models.Job) { j.Payment.Amount = -50 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid()
			tt.mutate(job)
			err := ValidateNewJob(job)
			require.NotNil(t, err)
			assert.Equal(t, KindValidation, err.Kind)
		})
	}
}

func TestApplyTransition(t *testing.T) {
	poster := Actor{ID: "u-poster", Role: models.RoleShipper}
	trucker := Actor{ID: "u-trucker", Role: models.RoleTrucker}
	now := time.Now()

	t.Run("unauthorized actor", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, Status: models.JobStatusOpen}
		err := ApplyTransition(job, models.JobStatusCancelled, Actor{ID: "someone", Role: models.RoleTrucker}, "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindUnauthorized, err.Kind)
	})

	t.Run("unknown status", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, Status: models.JobStatusOpen}
		err := ApplyTransition(job, "lost", poster, "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindValidation, err.Kind)
	})

	t.Run("illegal edge", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, Status: models.JobStatusOpen}
		err := ApplyTransition(job, models.JobStatusCompleted, poster, "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindInvalidTransition, err.Kind)
		assert.Equal(t, models.JobStatusOpen, job.Status)
		assert.Empty(t, job.StatusHistory)
	})

	t.Run("history is appended", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, AssignedTo: trucker.ID, Status: models.JobStatusAssigned}
		require.Nil(t, ApplyTransition(job, models.JobStatusInProgress, trucker, "rolling", now))
		require.Len(t, job.StatusHistory, 1)
		assert.Equal(t, models.JobStatusInProgress, job.StatusHistory[0].Status)
		assert.Equal(t, trucker.ID, job.StatusHistory[0].UpdatedBy)
		assert.Equal(t, "rolling", job.StatusHistory[0].Notes)
	})

	t.Run("completion stamps completedAt", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, AssignedTo: trucker.ID, Status: models.JobStatusInProgress}
		require.Nil(t, ApplyTransition(job, models.JobStatusCompleted, trucker, "", now))
		require.NotNil(t, job.CompletedAt)
		assert.Equal(t, now, *job.CompletedAt)
		assert.Equal(t, trucker.ID, job.AssignedTo)
	})

	t.Run("cancellation releases the assignee", func(t *testing.T) {
		job := &models.Job{PostedBy: poster.ID, AssignedTo: trucker.ID, Status: models.JobStatusAssigned}
		require.Nil(t, ApplyTransition(job, models.JobStatusCancelled, poster, "shipper backed out", now))
		assert.Empty(t, job.AssignedTo)
		assert.Equal(t, models.JobStatusCancelled, job.Status)
	})
}

func TestAddBidRules(t *testing.T) {
	trucker := Actor{ID: "u-trucker", Role: models.RoleTrucker}
	now := time.Now()
	openJob := func() *models.Job {
		return &models.Job{Status: models.JobStatusOpen, Payment: models.Payment{Currency: "USD"}}
	}

	t.Run("appends a pending bid", func(t *testing.T) {
		job := openJob()
		bid, err := AddBid(job, trucker, 1200, "", "can pick up tonight", now)
		require.Nil(t, err)
		assert.Equal(t, models.BidStatusPending, bid.Status)
		assert.Equal(t, trucker.ID, bid.Trucker)
		assert.Equal(t, "USD", bid.Currency)
		assert.Nil(t, bid.RespondedAt)
		assert.Equal(t, models.JobStatusOpen, job.Status)
		require.Len(t, job.Bids, 1)
	})

	t.Run("rejects non-truckers", func(t *testing.T) {
		_, err := AddBid(openJob(), Actor{ID: "x", Role: models.RoleShipper}, 100, "", "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindUnauthorized, err.Kind)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := AddBid(openJob(), trucker, 0, "", "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindValidation, err.Kind)
	})

	t.Run("rejects duplicate bids", func(t *testing.T) {
		job := openJob()
		_, err := AddBid(job, trucker, 1200, "", "", now)
		require.Nil(t, err)
		_, err = AddBid(job, trucker, 1100, "", "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindDuplicateBid, err.Kind)
	})

	t.Run("withdrawn bid does not block a new one", func(t *testing.T) {
		job := openJob()
		bid, err := AddBid(job, trucker, 1200, "", "", now)
		require.Nil(t, err)
		_, werr := WithdrawBid(job, bid.ID, trucker, now)
		require.Nil(t, werr)
		_, err = AddBid(job, trucker, 1100, "", "", now)
		require.Nil(t, err)
		require.Len(t, job.Bids, 2)
	})

	t.Run("closed job refuses bids", func(t *testing.T) {
		job := openJob()
		job.Status = models.JobStatusAssigned
		_, err := AddBid(job, trucker, 900, "", "", now)
		require.NotNil(t, err)
		assert.Equal(t, KindJobNotOpen, err.Kind)
	})
}

func TestAcceptBidPure(t *testing.T) {
	poster := Actor{ID: "u-poster", Role: models.RoleDispatcher}
	truckerA := Actor{ID: "u-a", Role: models.RoleTrucker}
	truckerB := Actor{ID: "u-b", Role: models.RoleTrucker}
	now := time.Now()

	setup := func() (*models.Job, string, string) {
		job := &models.Job{PostedBy: poster.ID, Status: models.JobStatusOpen}
		a, _ := AddBid(job, truckerA, 2600, "", "", now)
		b, _ := AddBid(job, truckerB, 2750, "", "", now)
		return job, a.ID, b.ID
	}

	t.Run("accept assigns and rejects rivals", func(t *testing.T) {
		job, aID, bID := setup()
		accepted, rejected, err := AcceptBid(job, aID, poster, now)
		require.Nil(t, err)
		assert.Equal(t, models.BidStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.RespondedAt)
		assert.Equal(t, []string{truckerB.ID}, rejected)
		assert.Equal(t, models.BidStatusRejected, job.Bid(bID).Status)
		require.NotNil(t, job.Bid(bID).RespondedAt)
		assert.Equal(t, models.JobStatusAssigned, job.Status)
		assert.Equal(t, truckerA.ID, job.AssignedTo)
	})

	t.Run("only the poster decides", func(t *testing.T) {
		job, aID, _ := setup()
		_, _, err := AcceptBid(job, aID, truckerB, now)
		require.NotNil(t, err)
		assert.Equal(t, KindUnauthorized, err.Kind)
	})

	t.Run("unknown bid", func(t *testing.T) {
		job, _, _ := setup()
		_, _, err := AcceptBid(job, "BID-NOPE", poster, now)
		require.NotNil(t, err)
		assert.Equal(t, KindNotFound, err.Kind)
	})

	t.Run("accepting twice fails on the bid state", func(t *testing.T) {
		job, aID, bID := setup()
		_, _, err := AcceptBid(job, aID, poster, now)
		require.Nil(t, err)
		_, _, err = AcceptBid(job, bID, poster, now)
		require.NotNil(t, err)
		assert.Equal(t, KindBidNotPending, err.Kind)
	})
}

func TestRejectAndWithdrawPure(t *testing.T) {
	poster := Actor{ID: "u-poster", Role: models.RoleDispatcher}
	trucker := Actor{ID: "u-a", Role: models.RoleTrucker}
	now := time.Now()

	setup := func() (*models.Job, string) {
		job := &models.Job{PostedBy: poster.ID, Status: models.JobStatusOpen}
		bid, _ := AddBid(job, trucker, 900, "", "", now)
		return job, bid.ID
	}

	t.Run("reject keeps the job open", func(t *testing.T) {
		job, bidID := setup()
		bid, err := RejectBid(job, bidID, poster, now)
		require.Nil(t, err)
		assert.Equal(t, models.BidStatusRejected, bid.Status)
		require.NotNil(t, bid.RespondedAt)
		assert.Equal(t, models.JobStatusOpen, job.Status)
		assert.Empty(t, job.AssignedTo)
	})

	t.Run("reject requires the poster", func(t *testing.T) {
		job, bidID := setup()
		_, err := RejectBid(job, bidID, trucker, now)
		require.NotNil(t, err)
		assert.Equal(t, KindUnauthorized, err.Kind)
	})

	t.Run("withdraw requires the bidder", func(t *testing.T) {
		job, bidID := setup()
		_, err := WithdrawBid(job, bidID, poster, now)
		require.NotNil(t, err)
		assert.Equal(t, KindUnauthorized, err.Kind)
	})

	t.Run("withdraw leaves respondedAt unset", func(t *testing.T) {
		job, bidID := setup()
		bid, err := WithdrawBid(job, bidID, trucker, now)
		require.Nil(t, err)
		assert.Equal(t, models.BidStatusWithdrawn, bid.Status)
		assert.Nil(t, bid.RespondedAt)
	})

	t.Run("withdrawing twice fails", func(t *testing.T) {
		job, bidID := setup()
		_, err := WithdrawBid(job, bidID, trucker, now)
		require.Nil(t, err)
		_, err = WithdrawBid(job, bidID, trucker, now)
		require.NotNil(t, err)
		assert.Equal(t, KindBidNotPending, err.Kind)
	})
}

func TestClaimPure(t *testing.T) {
	trucker := Actor{ID: "u-a", Role: models.RoleTrucker}
	now := time.Now()

	job := &models.Job{PostedBy: "u-poster", Status: models.JobStatusOpen}
	require.Nil(t, Claim(job, trucker, now))
	assert.Equal(t, models.JobStatusAssigned, job.Status)
	assert.Equal(t, trucker.ID, job.AssignedTo)
	require.Len(t, job.StatusHistory, 1)

	err := Claim(job, Actor{ID: "u-b", Role: models.RoleTrucker}, now)
	require.NotNil(t, err)
	assert.Equal(t, KindJobNotOpen, err.Kind)
	assert.Equal(t, trucker.ID, job.AssignedTo)
}
