package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/reliefops/hope-engine/internal/domain/errors"
	"github.com/reliefops/hope-engine/internal/domain/model"
	"github.com/reliefops/hope-engine/internal/domain/provider"
	"github.com/reliefops/hope-engine/internal/domain/repository"
)

// DeduplicationThresholds partition similarity scores: at or above
// DuplicateScore a hit is a confirmed duplicate, at or above
// PossibleDuplicateScore it needs human adjudication.
type DeduplicationThresholds struct {
	DuplicateScore         float64
	PossibleDuplicateScore float64
}

// scopeResults is the raw hit payload stored on the individual.
type scopeResults struct {
	Duplicates         []provider.SimilarityHit `json:"duplicates"`
	PossibleDuplicates []provider.SimilarityHit `json:"possible_duplicates"`
}

// DeduplicationService classifies candidate duplicate individuals
// against the batch and golden-record populations and materializes
// unresolved matches as adjudication tickets.
type DeduplicationService struct {
	individualRepo repository.IndividualRepository
	householdRepo  repository.HouseholdRepository
	ticketRepo     repository.GrievanceTicketRepository
	search         provider.SimilarityProvider
	notifier       GrievanceNotifier
	thresholds     DeduplicationThresholds
	logger         *zap.Logger
}

// NewDeduplicationService creates a new deduplication resolver
func NewDeduplicationService(
	individualRepo repository.IndividualRepository,
	householdRepo repository.HouseholdRepository,
	ticketRepo repository.GrievanceTicketRepository,
	search provider.SimilarityProvider,
	notifier GrievanceNotifier,
	thresholds DeduplicationThresholds,
	logger *zap.Logger,
) *DeduplicationService {
	return &DeduplicationService{
		individualRepo: individualRepo,
		householdRepo:  householdRepo,
		ticketRepo:     ticketRepo,
		search:         search,
		notifier:       notifier,
		thresholds:     thresholds,
		logger:         logger,
	}
}

// Classify runs the similarity search for one individual in one scope
// and writes the resulting status plus the raw hit payload. Re-running
// against an unchanged index reproduces the same classification. A
// search failure leaves the individual's prior status untouched.
func (s *DeduplicationService) Classify(ctx context.Context, individual *model.Individual, scope model.DeduplicationScope) error {
	req := &provider.SimilaritySearchRequest{
		BusinessArea:             individual.BusinessArea,
		FullName:                 individual.FullName,
		GivenName:                individual.GivenName,
		FamilyName:               individual.FamilyName,
		PhoneNumber:              individual.PhoneNumber,
		BirthDate:                individual.BirthDate,
		Scope:                    string(scope),
		RegistrationDataImportID: individual.RegistrationDataImportID,
		ExcludeID:                individual.ID,
	}

	hits, err := s.search.Search(ctx, req)
	if err != nil {
		s.logger.Error("similarity search failed, keeping prior deduplication status",
			zap.Int64("individual_id", individual.ID),
			zap.String("scope", string(scope)),
			zap.Error(err))
		return fmt.Errorf("similarity search failed for individual %d: %w", individual.ID, err)
	}

	results := scopeResults{
		Duplicates:         []provider.SimilarityHit{},
		PossibleDuplicates: []provider.SimilarityHit{},
	}
	for _, hit := range hits {
		switch {
		case hit.Score >= s.thresholds.DuplicateScore:
			results.Duplicates = append(results.Duplicates, hit)
		case hit.Score >= s.thresholds.PossibleDuplicateScore:
			results.PossibleDuplicates = append(results.PossibleDuplicates, hit)
		}
	}

	status := model.DeduplicationStatusUnique
	if len(results.Duplicates) > 0 {
		status = model.DeduplicationStatusDuplicate
	} else if len(results.PossibleDuplicates) > 0 {
		status = model.DeduplicationStatusPossibleDuplicate
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to serialize deduplication results: %w", err)
	}

	if scope == model.ScopeBatch {
		individual.DeduplicationBatchStatus = status
		individual.DeduplicationBatchResults = payload
	} else {
		individual.DeduplicationGoldenRecordStatus = status
		individual.DeduplicationGoldenRecordResults = payload
	}

	if err := s.individualRepo.UpdateDeduplication(ctx, individual); err != nil {
		return fmt.Errorf("failed to persist deduplication status: %w", err)
	}

	s.logger.Info("individual classified",
		zap.Int64("individual_id", individual.ID),
		zap.String("scope", string(scope)),
		zap.String("status", string(status)),
		zap.Int("duplicates", len(results.Duplicates)),
		zap.Int("possible_duplicates", len(results.PossibleDuplicates)))
	return nil
}

// ClassifyBatch classifies every individual of a registration batch in
// both scopes and raises adjudication tickets for golden-record
// matches. A failed individual aborts the run so the importing task can
// surface the error.
func (s *DeduplicationService) ClassifyBatch(ctx context.Context, registrationDataImportID int64) error {
	individuals, err := s.individualRepo.ListByRegistrationBatch(ctx, registrationDataImportID)
	if err != nil {
		return fmt.Errorf("failed to list batch individuals: %w", err)
	}

	for _, individual := range individuals {
		if err := s.Classify(ctx, individual, model.ScopeBatch); err != nil {
			return err
		}
		if err := s.Classify(ctx, individual, model.ScopeGoldenRecord); err != nil {
			return err
		}
	}

	return s.CreateNeedsAdjudicationTickets(ctx, individuals)
}

// CreateNeedsAdjudicationTickets raises one needs-adjudication ticket
// per individual flagged against the golden record. Golden-record
// classification takes precedence over batch classification for ticket
// routing; batch-only flags are surfaced on the individual but do not
// raise a ticket on their own.
func (s *DeduplicationService) CreateNeedsAdjudicationTickets(ctx context.Context, individuals []*model.Individual) error {
	tickets := make([]*model.GrievanceTicket, 0)
	for _, individual := range individuals {
		grStatus := individual.DeduplicationGoldenRecordStatus
		if grStatus != model.DeduplicationStatusDuplicate &&
			grStatus != model.DeduplicationStatusPossibleDuplicate {
			continue
		}

		var results scopeResults
		if len(individual.DeduplicationGoldenRecordResults) > 0 {
			if err := json.Unmarshal(individual.DeduplicationGoldenRecordResults, &results); err != nil {
				return fmt.Errorf("failed to parse golden-record results for individual %d: %w", individual.ID, err)
			}
		}

		flagged := append(results.Duplicates, results.PossibleDuplicates...)
		if len(flagged) == 0 {
			continue
		}

		ids := make([]int64, 0, len(flagged))
		scoreMin, scoreMax := flagged[0].Score, flagged[0].Score
		for _, hit := range flagged {
			ids = append(ids, hit.HitID)
			if hit.Score < scoreMin {
				scoreMin = hit.Score
			}
			if hit.Score > scoreMax {
				scoreMax = hit.Score
			}
		}
		idsPayload, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("failed to serialize possible duplicate ids: %w", err)
		}

		individualID := individual.ID
		ticket := &model.GrievanceTicket{
			UniversalID:  uuid.New(),
			Category:     model.CategoryNeedsAdjudication,
			Status:       model.TicketStatusNew,
			BusinessArea: individual.BusinessArea,
			IndividualID: &individualID,
			HouseholdID:  individual.HouseholdID,
			Description:  fmt.Sprintf("Possible duplicate of %d existing individuals", len(flagged)),
			AdjudicationDetails: &model.TicketNeedsAdjudicationDetails{
				GoldenRecordsIndividualID:   individual.ID,
				PossibleDuplicateIDs:        idsPayload,
				IsMultipleDuplicatesVersion: true,
				ScoreMin:                    scoreMin,
				ScoreMax:                    scoreMax,
			},
		}
		tickets = append(tickets, ticket)
	}

	if len(tickets) == 0 {
		return nil
	}

	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return fmt.Errorf("failed to create adjudication tickets: %w", err)
	}

	s.notifier.SendAllNotifications(ctx, ActionAdjudicationTicketCreated, tickets)

	s.logger.Info("adjudication tickets created",
		zap.Int("tickets", len(tickets)))
	return nil
}

// ResolvePossibleDuplicate records the operator's decision on an
// adjudication ticket. Selected individuals are marked for withdrawal
// and their household roles reassigned to a surviving individual of the
// comparison pair. Passing no selection reverts the ticket to
// unresolved and clears prior marks; it never destroys data.
func (s *DeduplicationService) ResolvePossibleDuplicate(ctx context.Context, ticketID int64, selectedIDs []int64) error {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket.Category != model.CategoryNeedsAdjudication || ticket.AdjudicationDetails == nil {
		return fmt.Errorf("ticket %d: %w", ticketID, domainErrors.ErrTicketNotAdjudication)
	}
	if ticket.Status == model.TicketStatusClosed {
		return fmt.Errorf("ticket %d: %w", ticketID, domainErrors.ErrTicketClosed)
	}

	details := ticket.AdjudicationDetails
	if !details.IsMultipleDuplicatesVersion && len(selectedIDs) > 1 {
		return fmt.Errorf("legacy ticket %d accepts at most one selected individual: %w", ticketID, domainErrors.ErrIndividualNotFlagged)
	}

	var possibleIDs []int64
	if len(details.PossibleDuplicateIDs) > 0 {
		if err := json.Unmarshal(details.PossibleDuplicateIDs, &possibleIDs); err != nil {
			return fmt.Errorf("failed to parse flagged individual ids: %w", err)
		}
	}
	flagged := map[int64]bool{details.GoldenRecordsIndividualID: true}
	for _, id := range possibleIDs {
		flagged[id] = true
	}
	for _, id := range selectedIDs {
		if !flagged[id] {
			return fmt.Errorf("individual %d on ticket %d: %w", id, ticketID, domainErrors.ErrIndividualNotFlagged)
		}
	}

	var previousIDs []int64
	if len(details.SelectedIndividualIDs) > 0 {
		if err := json.Unmarshal(details.SelectedIndividualIDs, &previousIDs); err != nil {
			return fmt.Errorf("failed to parse prior selection: %w", err)
		}
	}

	// Deselect first: anything previously selected but no longer in the
	// new selection gets its withdrawal mark cleared.
	selected := make(map[int64]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}
	deselected := make([]int64, 0)
	for _, id := range previousIDs {
		if !selected[id] {
			deselected = append(deselected, id)
		}
	}
	if len(deselected) > 0 {
		if err := s.individualRepo.ClearWithdrawalMarks(ctx, deselected); err != nil {
			return fmt.Errorf("failed to clear withdrawal marks: %w", err)
		}
	}

	if len(selectedIDs) > 0 {
		survivor, ok := pickSurvivor(details.GoldenRecordsIndividualID, possibleIDs, selected)
		if !ok {
			s.logger.Warn("all flagged individuals selected, skipping role reassignment",
				zap.Int64("ticket_id", ticketID))
		}

		if err := s.individualRepo.MarkForWithdrawal(ctx, selectedIDs); err != nil {
			return fmt.Errorf("failed to mark individuals for withdrawal: %w", err)
		}
		if ok {
			for _, id := range selectedIDs {
				if err := s.householdRepo.ReassignRoles(ctx, id, survivor); err != nil {
					return fmt.Errorf("failed to reassign roles from individual %d: %w", id, err)
				}
			}
		}
	}

	payload, err := json.Marshal(selectedIDs)
	if err != nil {
		return fmt.Errorf("failed to serialize selection: %w", err)
	}
	details.SelectedIndividualIDs = payload
	if err := s.ticketRepo.UpdateAdjudicationDetails(ctx, details); err != nil {
		return fmt.Errorf("failed to persist adjudication selection: %w", err)
	}

	s.logger.Info("adjudication ticket selection updated",
		zap.Int64("ticket_id", ticketID),
		zap.Int("selected", len(selectedIDs)),
		zap.Int("deselected", len(deselected)))
	return nil
}

// ListTargetableHouseholds applies the targeting exclusion flags: open
// adjudication tickets and confirmed sanction-list matches.
func (s *DeduplicationService) ListTargetableHouseholds(ctx context.Context, businessArea string, filters repository.TargetingFilters) ([]*model.Household, error) {
	households, err := s.householdRepo.ListForTargeting(ctx, businessArea, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list targetable households: %w", err)
	}
	return households, nil
}

// pickSurvivor chooses the flagged individual the dropped records'
// roles move to: the golden-record individual when it is not itself
// selected, otherwise the first unselected flagged individual.
func pickSurvivor(goldenID int64, possibleIDs []int64, selected map[int64]bool) (int64, bool) {
	if !selected[goldenID] {
		return goldenID, true
	}
	for _, id := range possibleIDs {
		if !selected[id] {
			return id, true
		}
	}
	return 0, false
}
