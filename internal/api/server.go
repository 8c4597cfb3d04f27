// Package api serves the tokenizer over HTTP: encode, decode, chat-template
// rendering, and cache inspection.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loom/internal/hub"
	"github.com/samcharles93/loom/internal/tokenizer"
	"github.com/samcharles93/loom/internal/version"
)

// ModelLister enumerates locally cached models. *hub.Hub implements it.
type ModelLister interface {
	CachedModels() ([]hub.CachedModel, error)
}

type Server struct {
	provider TokenizerProvider
	lister   ModelLister
}

func NewServer(provider TokenizerProvider, lister ModelLister) *Server {
	return &Server{provider: provider, lister: lister}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/tokenize", s.handleTokenize)
	e.POST("/v1/detokenize", s.handleDetokenize)
	e.POST("/v1/chat/template", s.handleChatTemplate)
	e.GET("/v1/tokenizer", s.handleTokenizerInfo)
	e.GET("/v1/models", s.handleListModels)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) handleTokenize(c *echo.Context) error {
	req, err := decodeJSON[TokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	var resp TokenizeResponse
	err = s.provider.WithTokenizer(c.Request().Context(), req.Model, func(tok tokenizer.Tokenizer) error {
		ids, err := tok.Encode(req.Text)
		if err != nil {
			return err
		}
		resp = TokenizeResponse{
			ID:     newTokenizationID(),
			Object: "tokenization",
			Model:  req.Model,
			Tokens: ids,
			Count:  len(ids),
		}
		if req.WithPieces {
			pieces, err := tok.Tokenize(req.Text)
			if err != nil {
				return err
			}
			resp.Pieces = pieces
		}
		return nil
	})
	if err != nil {
		return writeProviderError(c, err)
	}
	if resp.Tokens == nil {
		resp.Tokens = []int32{}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDetokenize(c *echo.Context) error {
	req, err := decodeJSON[DetokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	var resp DetokenizeResponse
	err = s.provider.WithTokenizer(c.Request().Context(), req.Model, func(tok tokenizer.Tokenizer) error {
		text, err := tok.Decode(req.Tokens)
		if err != nil {
			return err
		}
		resp = DetokenizeResponse{
			ID:     newTokenizationID(),
			Object: "detokenization",
			Model:  req.Model,
			Text:   text,
		}
		return nil
	})
	if err != nil {
		return writeProviderError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChatTemplate(c *echo.Context) error {
	req, err := decodeJSON[ChatTemplateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	addGen := true
	if req.AddGenerationPrompt != nil {
		addGen = *req.AddGenerationPrompt
	}

	var resp ChatTemplateResponse
	err = s.provider.WithTokenizer(c.Request().Context(), req.Model, func(tok tokenizer.Tokenizer) error {
		ids, err := tok.ApplyChatTemplate(messagesFromDTO(req.Messages), tokenizer.TemplateOptions{
			AddGenerationPrompt: addGen,
			Tools:               req.Tools,
		})
		if err != nil {
			return err
		}
		resp = ChatTemplateResponse{
			ID:     newTokenizationID(),
			Object: "chat.template",
			Model:  req.Model,
			Tokens: ids,
			Count:  len(ids),
		}
		return nil
	})
	if err != nil {
		return writeProviderError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTokenizerInfo(c *echo.Context) error {
	model := c.QueryParam("model")

	var resp TokenizerInfoResponse
	err := s.provider.WithTokenizer(c.Request().Context(), model, func(tok tokenizer.Tokenizer) error {
		sp := tok.SpecialTokens()
		resp = TokenizerInfoResponse{
			Object:               "tokenizer",
			Model:                model,
			Kind:                 string(tok.Kind()),
			SupportsChatTemplate: tok.SupportsChatTemplate(),
			BOS:                  specialTokenInfo(sp.BOS),
			EOS:                  specialTokenInfo(sp.EOS),
			UNK:                  specialTokenInfo(sp.UNK),
		}
		return nil
	})
	if err != nil {
		return writeProviderError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListModels(c *echo.Context) error {
	if s.lister == nil {
		return c.JSON(http.StatusOK, ModelListResponse{Object: "list", Data: []ModelInfo{}})
	}
	models, err := s.lister.CachedModels()
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
	out := ModelListResponse{Object: "list", Data: make([]ModelInfo, 0, len(models))}
	for _, m := range models {
		out.Data = append(out.Data, ModelInfo{ID: m.ID, Kind: string(m.Kind)})
	}
	return c.JSON(http.StatusOK, out)
}

func writeProviderError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, tokenizer.ErrChatTemplateUnsupported):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "", "chat_template_unsupported")
	case errors.Is(err, tokenizer.ErrMissingConfig):
		return writeError(c, http.StatusNotFound, "not_found_error", err.Error(), "", "missing_tokenizer_config")
	case errors.Is(err, hub.ErrNotFound):
		return writeNotFound(c, err.Error())
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid json: %w", err)
	}
	return v, nil
}

func newTokenizationID() string {
	return "tok_" + uuid.NewString()
}
