package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// MethodService manages the payment method vault. An owner has at most one
// default method at any time.
type MethodService struct {
	scope     uow.TransactionScope
	reads     uow.Repositories
	processor payment.Processor
	metrics   *telemetry.SettlementMetrics
	now       func() time.Time
	logger    *zap.Logger
}

// NewMethodService creates a MethodService.
func NewMethodService(cfg IntentServiceConfig) *MethodService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &MethodService{
		scope:     cfg.Scope,
		reads:     cfg.Reads,
		processor: cfg.Processor,
		metrics:   cfg.Metrics,
		now:       time.Now,
		logger:    cfg.Logger.Named("methods"),
	}
}

// AttachMethod attaches a tokenized method to the owner at the processor and
// stores its display data. Attaching a reference the owner already holds
// returns the stored method. The owner's first method becomes the default.
func (s *MethodService) AttachMethod(ctx context.Context, ownerID string, req AttachMethodRequest) (*MethodResponse, error) {
	existing, err := s.reads.Methods().FindByExternalReference(ctx, ownerID, req.PaymentMethodRef)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if req.MakeDefault && !existing.IsDefault {
			return s.SetDefault(ctx, ownerID, existing.ID)
		}
		resp := ToMethodResponse(existing, s.now())
		return &resp, nil
	}

	remote, err := callProcessor(ctx, s.metrics, "attach_method", func(ctx context.Context) (*payment.ProcessorPaymentMethod, error) {
		return s.processor.AttachPaymentMethod(ctx, payment.AttachMethodRequest{
			IdempotencyKey:   "pm-attach:" + ownerID + ":" + req.PaymentMethodRef,
			PaymentMethodRef: req.PaymentMethodRef,
			CustomerRef:      ownerID,
		})
	})
	if err != nil {
		return nil, err
	}
	method, err := payment.NewPaymentMethod(ownerID, remote.Reference, remote.Brand, remote.Last4, remote.ExpMonth, remote.ExpYear)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		current, err := repos.Methods().FindDefault(ctx, ownerID)
		if err != nil {
			return err
		}
		if current == nil || req.MakeDefault {
			if err := repos.Methods().ClearDefault(ctx, ownerID); err != nil {
				return err
			}
			method.IsDefault = true
		}
		return repos.Methods().Create(ctx, method)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment method attached",
		zap.String("owner_id", ownerID),
		zap.String("method_id", method.ID.String()),
		zap.Bool("default", method.IsDefault))

	resp := ToMethodResponse(method, s.now())
	return &resp, nil
}

// ListMethods returns the owner's methods, default first.
func (s *MethodService) ListMethods(ctx context.Context, ownerID string) ([]MethodResponse, error) {
	methods, err := s.reads.Methods().FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	payment.SortForDisplay(methods)
	now := s.now()
	out := make([]MethodResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, ToMethodResponse(m, now))
	}
	return out, nil
}

// DefaultMethod returns the owner's default method, or nil when the owner has
// none.
func (s *MethodService) DefaultMethod(ctx context.Context, ownerID string) (*MethodResponse, error) {
	m, err := s.reads.Methods().FindDefault(ctx, ownerID)
	if err != nil || m == nil {
		return nil, err
	}
	resp := ToMethodResponse(m, s.now())
	return &resp, nil
}

// SetDefault makes methodID the owner's default.
func (s *MethodService) SetDefault(ctx context.Context, ownerID string, methodID uuid.UUID) (*MethodResponse, error) {
	var method *payment.PaymentMethod
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		m, err := ownedMethod(ctx, repos, ownerID, methodID)
		if err != nil {
			return err
		}
		if err := repos.Methods().ClearDefault(ctx, ownerID); err != nil {
			return err
		}
		if err := repos.Methods().SetDefault(ctx, methodID); err != nil {
			return err
		}
		m.IsDefault = true
		method = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToMethodResponse(method, s.now())
	return &resp, nil
}

// RemoveMethod detaches the method at the processor and deletes it. When the
// default is removed the newest remaining method is promoted.
func (s *MethodService) RemoveMethod(ctx context.Context, ownerID string, methodID uuid.UUID) error {
	m, err := ownedMethod(ctx, s.reads, ownerID, methodID)
	if err != nil {
		return err
	}
	_, err = callProcessor(ctx, s.metrics, "detach_method", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.processor.DetachPaymentMethod(ctx, m.ExternalReference)
	})
	if err != nil {
		return err
	}

	var promoted *payment.PaymentMethod
	err = s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Methods().Delete(ctx, methodID); err != nil {
			return err
		}
		if !m.IsDefault {
			return nil
		}
		rest, err := repos.Methods().FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		promoted = payment.NextDefault(rest, methodID)
		if promoted == nil {
			return nil
		}
		return repos.Methods().SetDefault(ctx, promoted.ID)
	})
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.String("owner_id", ownerID), zap.String("method_id", methodID.String())}
	if promoted != nil {
		fields = append(fields, zap.String("promoted_id", promoted.ID.String()))
	}
	s.logger.Info("Payment method removed", fields...)
	return nil
}

// ownedMethod loads a method and hides methods of other owners behind not
// found.
func ownedMethod(ctx context.Context, repos uow.Repositories, ownerID string, id uuid.UUID) (*payment.PaymentMethod, error) {
	m, err := repos.Methods().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != ownerID {
		return nil, shared.NewNotFoundError("payment method")
	}
	return m, nil
}
