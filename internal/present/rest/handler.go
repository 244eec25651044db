package rest

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
	"github.com/seedora/registry/internal/present/rest/middleware"
	"github.com/seedora/registry/internal/present/rest/presenter"
	"github.com/seedora/registry/internal/service"
	"github.com/seedora/registry/internal/usecase"
)

type Handler struct {
	config       domain.Config
	registration *usecase.RegistrationUsecase
	record       *usecase.RecordUsecase
	signal       *service.SignalService
}

func NewHandler(
	config domain.Config,
	registration *usecase.RegistrationUsecase,
	record *usecase.RecordUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:       config,
		registration: registration,
		record:       record,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.POST("/api/startups/register/init", h.handleRegisterInit, middleware.UploadLimit(h.maxUploadBytes()))
	e.POST("/api/startups/register/finalize", h.handleRegisterFinalize)
	e.GET("/api/startups/:id", h.handleGetStartup)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) maxUploadBytes() int64 {
	if h.config.MaxUploadBytes > 0 {
		return h.config.MaxUploadBytes
	}
	return domain.DefaultMaxUploadBytes
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleRegisterInit(c echo.Context) error {
	ctx := c.Request().Context()

	walletAddress := strings.TrimSpace(c.FormValue("walletAddress"))
	if walletAddress == "" {
		return presenter.BadRequestMessage(c, "Wallet address is required")
	}

	file, err := c.FormFile("pitchFile")
	if err != nil {
		return presenter.BadRequestMessage(c, "Pitch file is required")
	}
	if file.Size > h.maxUploadBytes() {
		return presenter.BadRequestMessage(c, "Pitch file exceeds the upload limit")
	}

	src, err := file.Open()
	if err != nil {
		return presenter.InternalError(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	metadata := map[string]string{}
	for _, field := range []string{"name", "description", "category", "founderName"} {
		if v := c.FormValue(field); v != "" {
			metadata[field] = v
		}
	}
	if metadata["name"] == "" {
		metadata["name"] = file.Filename
	}

	result, err := h.registration.Init(ctx, registry.RegistrationRequest{
		OwnerAccount: walletAddress,
		File:         data,
		Metadata:     metadata,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}

	return presenter.Created(c, echo.Map{
		"ipfsUrl":    result.ContentRef.GatewayURL,
		"nftTxnData": result.UnsignedTx,
		"startupData": echo.Map{
			"id":            result.PitchID,
			"name":          metadata["name"],
			"description":   metadata["description"],
			"category":      metadata["category"],
			"founderName":   metadata["founderName"],
			"walletAddress": walletAddress,
			"cid":           result.ContentRef.CID,
			"checksum":      result.Checksum,
		},
	})
}

type finalizeRequest struct {
	UserID    string `json:"userId"`
	PitchID   string `json:"pitchId"`
	IpfsURL   string `json:"ipfsUrl"`
	SignedTxn string `json:"signedTxn"`

	Startup struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		FounderName   string `json:"founderName"`
		WalletAddress string `json:"walletAddress"`
		Checksum      string `json:"checksum"`
	} `json:"startup"`
}

func (h *Handler) handleRegisterFinalize(c echo.Context) error {
	ctx := c.Request().Context()

	var req finalizeRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if req.SignedTxn == "" {
		return presenter.BadRequestMessage(c, "Signed transaction is required")
	}

	signed, err := base64.StdEncoding.DecodeString(req.SignedTxn)
	if err != nil {
		return presenter.BadRequestMessage(c, "Signed transaction is not valid base64")
	}

	rec, err := h.registration.Finalize(ctx, usecase.FinalizeInput{
		OwnerID:      req.UserID,
		PitchID:      req.PitchID,
		ContentRef:   registry.ContentReference{GatewayURL: req.IpfsURL},
		SignedTxn:    signed,
		OwnerAccount: req.Startup.WalletAddress,
		Name:         req.Startup.Name,
		Description:  req.Startup.Description,
		Category:     req.Startup.Category,
		FounderName:  req.Startup.FounderName,
		Checksum:     req.Startup.Checksum,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrSubmission):
			return presenter.BadRequest(c, err)
		default:
			// ConfirmationTimeoutError and PersistenceError both carry the
			// transaction id in their message; the caller needs it.
			return presenter.InternalError(c, err)
		}
	}

	return presenter.Created(c, echo.Map{
		"nftTxHash": rec.TxID,
		"startup":   rec,
	})
}

func (h *Handler) handleGetStartup(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	rec, pin, err := h.record.GetWithPinStatus(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "startup not found")
		}
		return presenter.InternalError(c, err)
	}

	payload := echo.Map{"startup": rec}
	if pin != nil {
		payload["pinStatus"] = pin
	}
	return presenter.OK(c, payload)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type   string   `json:"type"`
	Owners []string `json:"owners"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// The signal loop and the reader goroutine shut down through this
	// context alone; closing the channels from here would race their sends.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan registry.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Owners:
				case <-ctx.Done():
					return
				}
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
