package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/metrics"
)

// CreateMember optimistically adds a member in "invited" state under a
// temporary id and reconciles it with the server-assigned member id. The
// resident projection, if any, is server-owned (the resident id only exists
// once the server assigned it), so it appears on the next member load rather
// than speculatively.
func (s *Store) CreateMember(ctx context.Context, tenantID string, req CreateMemberRequest) (domain.Member, error) {
	tempID := newTempID()
	bak := newBackup()
	now := s.nowFn()

	// Phase 1.
	_ = s.update(func(next *Snapshot) error {
		bak.member(next, tempID)
		bak.memberIndexFor(next, tenantID)
		next.members[tempID] = domain.Member{
			MemberID: tempID,
			TenantID: tenantID,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Role:     req.Role,
			Status:   "pending",
			Invite: domain.InviteState{
				Status:    "invited",
				InvitedBy: req.CreatedBy,
				InvitedAt: &now,
			},
		}
		appendID(next.membersByTenant, tenantID, tempID)
		return nil
	})
	s.logger.Debug("member create speculated",
		zap.String("tenant_id", tenantID),
		zap.String("temp_id", tempID),
		zap.String("role", string(req.Role)),
	)

	// Phase 2.
	memberID, err := s.remote.CreateMember(ctx, tenantID, req)
	if err != nil {
		// Phase 3b.
		_ = s.update(func(next *Snapshot) error {
			bak.restore(next)
			next.membersError = err.Error()
			return nil
		})
		metrics.RecordMutation("create_member", metrics.OutcomeRollback)
		s.logger.Warn("member create rolled back",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return domain.Member{}, fmt.Errorf("create member: %w", err)
	}

	// Phase 3a: re-key the speculative row under the server id.
	var out domain.Member
	_ = s.update(func(next *Snapshot) error {
		speculative, ok := next.members[tempID]
		if !ok {
			// Something replaced the row while the call was in flight
			// (e.g. Clear); keep the server's identity anyway.
			speculative = domain.Member{TenantID: tenantID, Name: req.Name, Role: req.Role}
		}
		delete(next.members, tempID)
		speculative.MemberID = memberID
		next.members[memberID] = speculative
		replaceID(next.membersByTenant, tenantID, tempID, memberID)
		next.lastSyncAt = s.nowFn()
		out = speculative.Clone()
		return nil
	})
	metrics.RecordMutation("create_member", metrics.OutcomeReconciled)
	s.logger.Info("member created",
		zap.String("tenant_id", tenantID),
		zap.String("member_id", memberID),
	)
	return out, nil
}
