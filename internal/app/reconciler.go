package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// HotelService owns hotel instance mutations: the update reconciler and
// explicit instance creation. Reads go through QueryService.
type HotelService struct {
	hotels domain.HotelRepository
	audit  domain.AuditSink
	cache  domain.Cache
	now    func() time.Time
}

func NewHotelService(hotels domain.HotelRepository, audit domain.AuditSink, cache domain.Cache) *HotelService {
	return &HotelService{hotels: hotels, audit: audit, cache: cache, now: time.Now}
}

type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// UpdateResult summarizes what a patch did. When only property-wide fields
// changed, Instances carries the whole updated group; Instance always
// reflects the target.
type UpdateResult struct {
	NoChanges         bool                   `json:"noChanges"`
	Instance          domain.HotelInstance   `json:"instance"`
	Instances         []domain.HotelInstance `json:"instances,omitempty"`
	Changed           []FieldChange          `json:"changed,omitempty"`
	AffectedInstances int                    `json:"affectedInstances"`
}

// Update applies a patch to the instance identified by id.
//
// The whole sequence runs in one repository transaction: load, diff,
// conflict check, write. Overlapping dates fail with DateConflictError and
// nothing is written. Property-wide fields fan out to every instance of
// the hotel; instance-specific fields touch only the target. An identical
// patch short-circuits with NoChanges and writes no audit entry.
func (s *HotelService) Update(ctx context.Context, id int64, patch domain.HotelPatch, userID string) (UpdateResult, error) {
	var res UpdateResult
	var entries []domain.AuditEntry
	var hotelID string

	err := s.hotels.InTx(ctx, func(tx domain.HotelRepository) error {
		orig, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		hotelID = orig.HotelID
		res.Instance = orig

		changed := diffPatch(orig, patch)
		if len(changed) == 0 {
			res.NoChanges = true
			return nil
		}
		res.Changed = changed

		fields := patch.Fields()
		start, end := effectiveRange(orig, fields)
		if !end.After(start) {
			return domain.Invalid("endDate must be after startDate")
		}

		if datesDiffer(changed) {
			overlaps, err := NewResolver(tx).FindOverlaps(ctx, orig.HotelID, start, end, orig.InstanceCode)
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				refs := make([]domain.InstanceRef, 0, len(overlaps))
				for _, o := range overlaps {
					refs = append(refs, o.Ref())
				}
				return &domain.DateConflictError{HotelID: orig.HotelID, Conflicts: refs}
			}
		}

		propertyWide, instanceSpecific := partition(changed, fields)

		if len(propertyWide) > 0 {
			instances, err := tx.UpdateAllInstancesOfHotel(ctx, orig.HotelID, propertyWide)
			if err != nil {
				return err
			}
			res.Instances = instances
			res.AffectedInstances = len(instances)
			entries = append(entries, s.entry(userID, domain.ActionHotelPropertyUpdate, orig.HotelID, map[string]any{
				"hotelId":           orig.HotelID,
				"affectedInstances": len(instances),
				"changes":           changesFor(changed, propertyWide),
			}))
		}

		if len(instanceSpecific) > 0 {
			inst, err := tx.UpdateFields(ctx, id, instanceSpecific)
			if err != nil {
				return err
			}
			res.Instance = inst
			if res.AffectedInstances == 0 {
				res.AffectedInstances = 1
			}
			entries = append(entries, s.entry(userID, domain.ActionHotelInstanceUpdate, orig.HotelID, map[string]any{
				"hotelId":      orig.HotelID,
				"instanceCode": orig.InstanceCode,
				"changes":      changesFor(changed, instanceSpecific),
			}))
		} else if len(res.Instances) > 0 {
			// keep the returned target in sync with the fan-out write
			for _, inst := range res.Instances {
				if inst.ID == id {
					res.Instance = inst
				}
			}
		}
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}

	if !res.NoChanges {
		s.append(ctx, entries)
		s.invalidate(ctx, hotelID, id)
	}
	return res, nil
}

// AddInstance creates a new instance after the same overlap gate the
// upload path uses.
func (s *HotelService) AddInstance(ctx context.Context, h domain.HotelInstance, userID string) (domain.HotelInstance, error) {
	if !domain.Day(h.EndDate).After(domain.Day(h.StartDate)) {
		return domain.HotelInstance{}, domain.Invalid("endDate must be after startDate")
	}
	var created domain.HotelInstance
	err := s.hotels.InTx(ctx, func(tx domain.HotelRepository) error {
		overlaps, err := NewResolver(tx).FindOverlaps(ctx, h.HotelID, h.StartDate, h.EndDate, "")
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			refs := make([]domain.InstanceRef, 0, len(overlaps))
			for _, o := range overlaps {
				refs = append(refs, o.Ref())
			}
			return &domain.DateConflictError{HotelID: h.HotelID, Conflicts: refs}
		}
		created, err = tx.Create(ctx, h)
		return err
	})
	if err != nil {
		return domain.HotelInstance{}, err
	}

	s.append(ctx, []domain.AuditEntry{s.entry(userID, domain.ActionHotelInstanceUpdate, h.HotelID, map[string]any{
		"hotelId":      h.HotelID,
		"instanceCode": h.InstanceCode,
		"created":      true,
	})})
	s.invalidate(ctx, h.HotelID, created.ID)
	return created, nil
}

func (s *HotelService) entry(userID, action, targetID string, details map[string]any) domain.AuditEntry {
	return domain.AuditEntry{
		EntryID:      uuid.NewString(),
		UserID:       userID,
		ActionType:   action,
		TargetEntity: "hotel",
		TargetID:     targetID,
		Details:      details,
		Timestamp:    s.now(),
	}
}

// append is persist-and-forget: sink failures are logged, never surfaced.
func (s *HotelService) append(ctx context.Context, entries []domain.AuditEntry) {
	if s.audit == nil {
		return
	}
	for _, e := range entries {
		if err := s.audit.Append(ctx, e); err != nil {
			log.Error().Err(err).Str("action", e.ActionType).Msg("audit append failed")
		}
	}
}

func (s *HotelService) invalidate(ctx context.Context, hotelID string, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:id:%d", id))
	// status-filtered list variants
	for _, st := range []domain.HotelStatus{"", domain.StatusUpcoming, domain.StatusActive, domain.StatusExpired} {
		_ = s.cache.Del(ctx, listKey(hotelID, st))
		_ = s.cache.Del(ctx, listKey("", st))
	}
}

// ---- diff helpers ----

func diffPatch(orig domain.HotelInstance, patch domain.HotelPatch) []FieldChange {
	fields := patch.Fields()
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)

	var out []FieldChange
	for _, n := range names {
		from := orig.FieldValue(n)
		to := fields[n]
		if !valueEqual(from, to) {
			out = append(out, FieldChange{Field: n, From: from, To: to})
		}
	}
	return out
}

func valueEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func datesDiffer(changed []FieldChange) bool {
	for _, c := range changed {
		if c.Field == "startDate" || c.Field == "endDate" {
			return true
		}
	}
	return false
}

// effectiveRange overlays patched dates on the original's.
func effectiveRange(orig domain.HotelInstance, fields map[string]any) (time.Time, time.Time) {
	start, end := domain.Day(orig.StartDate), domain.Day(orig.EndDate)
	if v, ok := fields["startDate"]; ok {
		start = v.(time.Time)
	}
	if v, ok := fields["endDate"]; ok {
		end = v.(time.Time)
	}
	return start, end
}

// partition splits changed fields by scope, returning repo-ready field
// maps. Unclassified fields count as instance-specific.
func partition(changed []FieldChange, fields map[string]any) (propertyWide, instanceSpecific map[string]any) {
	propertyWide = map[string]any{}
	instanceSpecific = map[string]any{}
	for _, c := range changed {
		if domain.FieldScopes[c.Field] == domain.PropertyWide {
			propertyWide[c.Field] = fields[c.Field]
		} else {
			instanceSpecific[c.Field] = fields[c.Field]
		}
	}
	return propertyWide, instanceSpecific
}

func changesFor(changed []FieldChange, subset map[string]any) map[string]any {
	out := map[string]any{}
	for _, c := range changed {
		if _, ok := subset[c.Field]; ok {
			out[c.Field] = map[string]any{"from": renderValue(c.From), "to": renderValue(c.To)}
		}
	}
	return out
}

func renderValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(domain.DateLayout)
	}
	return v
}
