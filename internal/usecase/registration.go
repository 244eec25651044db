package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
)

var tracer = otel.Tracer("registration")

// InitResult is handed back to the caller for external wallet signing.
// Phase one never blocks waiting for a signature.
type InitResult struct {
	PitchID    string
	ContentRef registry.ContentReference
	UnsignedTx registry.UnsignedTransaction
	Checksum   string
}

// FinalizeInput carries the client-signed transaction back in, together
// with the phase-one artifacts the client echoes.
type FinalizeInput struct {
	OwnerID    string
	PitchID    string
	ContentRef registry.ContentReference
	SignedTxn  []byte

	// Startup metadata echoed from phase one; optional.
	OwnerAccount string
	Name         string
	Description  string
	Category     string
	FounderName  string
	Checksum     string
}

type RegistrationUsecase struct {
	store  ContentStore
	ledger Ledger
	repo   RecordRepository
	events EventPublisher
	config domain.Config
}

func NewRegistrationUsecase(
	store ContentStore,
	ledger Ledger,
	repo RecordRepository,
	events EventPublisher,
	config domain.Config,
) *RegistrationUsecase {
	return &RegistrationUsecase{
		store:  store,
		ledger: ledger,
		repo:   repo,
		events: events,
		config: config,
	}
}

// Init runs phase one: validate, pin content, prepare an unsigned
// asset-creation transaction referencing the pinned content.
//
// If preparation fails the content is already pinned and stays pinned; the
// caller may retry the whole phase, which re-pins rather than resuming.
func (uc *RegistrationUsecase) Init(ctx context.Context, req registry.RegistrationRequest) (*InitResult, error) {
	ctx, span := tracer.Start(ctx, "Registration.Init")
	defer span.End()

	if strings.TrimSpace(req.OwnerAccount) == "" {
		return nil, domain.ValidationError{Reason: "wallet address is required"}
	}
	hasFile := len(req.File) > 0
	hasDoc := req.Document != nil
	if hasFile == hasDoc {
		return nil, domain.ValidationError{Reason: "exactly one of file or document must be supplied"}
	}

	name := req.Metadata["name"]
	if name == "" {
		name = "pitch"
	}

	var (
		ref registry.ContentReference
		err error
	)
	if hasFile {
		ref, err = uc.store.StoreFile(ctx, name, req.File, req.Metadata)
	} else {
		ref, err = uc.store.StoreJSON(ctx, req.Document, req.Metadata)
	}
	if err != nil {
		span.RecordError(errors.Wrap(err, "content store failed"))
		return nil, err
	}

	slog.DebugContext(ctx, "content stored",
		slog.String("cid", ref.CID),
		slog.String("state", domain.StateContentStored.String()),
		slog.String("module", "registration"),
	)

	unsigned, err := uc.ledger.PrepareAssetCreate(ctx, req.OwnerAccount, ref.GatewayURL, name)
	if err != nil {
		span.RecordError(errors.Wrap(err, "transaction preparation failed"))
		slog.WarnContext(ctx, "content pinned but preparation failed",
			slog.String("cid", ref.CID),
			slog.String("owner", req.OwnerAccount),
			slog.String("module", "registration"),
		)
		return nil, err
	}

	result := &InitResult{
		PitchID:    uuid.NewString(),
		ContentRef: ref,
		UnsignedTx: unsigned,
	}
	if hasFile {
		result.Checksum = registry.Checksum(req.File)
	}
	return result, nil
}

// Finalize runs phase two: submit the signed transaction, wait for bounded
// confirmation, persist the record, publish the confirmation event. A
// failed finalize never leaves a partial record.
func (uc *RegistrationUsecase) Finalize(ctx context.Context, input FinalizeInput) (domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Registration.Finalize")
	defer span.End()

	if len(input.SignedTxn) == 0 {
		return domain.Registration{}, domain.ValidationError{Reason: "Signed transaction is required"}
	}

	txID, err := uc.ledger.Submit(ctx, input.SignedTxn)
	if err != nil {
		span.RecordError(errors.Wrap(err, "submission failed"))
		return domain.Registration{}, err
	}

	slog.DebugContext(ctx, "transaction submitted",
		slog.String("txId", txID),
		slog.String("state", domain.StateTxSubmitted.String()),
		slog.String("module", "registration"),
	)

	rounds := uc.config.ConfirmationRounds
	if rounds == 0 {
		rounds = domain.DefaultConfirmationRounds
	}
	if err := uc.ledger.WaitForConfirmation(ctx, txID, rounds); err != nil {
		span.RecordError(errors.Wrap(err, "confirmation failed"))
		return domain.Registration{}, err
	}

	slog.DebugContext(ctx, "transaction confirmed",
		slog.String("txId", txID),
		slog.String("state", domain.StateConfirmed.String()),
		slog.String("module", "registration"),
	)

	id := input.PitchID
	if id == "" {
		id = uuid.NewString()
	}

	cid := input.ContentRef.CID
	if cid == "" && input.ContentRef.GatewayURL != "" {
		// Only a well-formed identifier is persisted; the client echoes the
		// url and may have mangled it.
		if parsed, perr := registry.ParseGatewayURL(input.ContentRef.GatewayURL); perr == nil && registry.IsCID(parsed) {
			cid = parsed
		}
	}

	rec := domain.Registration{
		ID:           id,
		OwnerID:      input.OwnerID,
		OwnerAccount: input.OwnerAccount,
		CID:          cid,
		GatewayURL:   input.ContentRef.GatewayURL,
		TxID:         txID,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		FounderName:  input.FounderName,
		Checksum:     input.Checksum,
		CreatedAt:    time.Now().UTC(),
	}

	stored, err := uc.repo.Insert(ctx, rec)
	if err != nil {
		// The transaction IS confirmed on chain at this point. Surface the
		// id loudly for manual reconciliation instead of retrying; a rerun
		// of the flow would mint a duplicate asset.
		span.RecordError(errors.Wrap(err, "record write failed after confirmation"),
			trace.WithAttributes(attribute.String("txid", txID)))
		slog.ErrorContext(ctx, "confirmed transaction has no record",
			slog.String("txId", txID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
		return domain.Registration{}, err
	}

	if uc.events != nil {
		event := registry.Event{
			Type:           registry.EventTypeConfirmed,
			RegistrationID: stored.ID,
			Owner:          stored.OwnerAccount,
			TxID:           stored.TxID,
			CID:            stored.CID,
			Timestamp:      stored.CreatedAt,
		}
		if err := uc.events.Publish(ctx, domain.EventChannel, event); err != nil {
			slog.WarnContext(ctx, "failed to publish confirmation event",
				slog.String("txId", stored.TxID),
				slog.String("error", err.Error()),
				slog.String("module", "registration"),
			)
		}
	}

	return stored, nil
}
