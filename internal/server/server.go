package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/agenthands/askbot/internal/config"
	"github.com/agenthands/askbot/internal/core"
	"github.com/agenthands/askbot/internal/core/model"
)

// HistoryReader serves the recent chat records for GET /history.
type HistoryReader interface {
	Recent() []model.ChatRecord
}

type Server struct {
	Resolver *core.Resolver
	History  HistoryReader
	Config   config.ServerConfig
}

func NewServer(resolver *core.Resolver, history HistoryReader, cfg config.ServerConfig) *Server {
	return &Server{
		Resolver: resolver,
		History:  history,
		Config:   cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), CORS(s.Config.AllowedOrigins))

	r.GET("/", s.Root)
	r.POST("/ask", s.Ask)
	r.GET("/history", s.GetHistory)

	return r
}

type AskRequest struct {
	Question *string `json:"question" binding:"required"`
}

type AskResponse struct {
	Answer          string       `json:"answer"`
	MatchedQuestion string       `json:"matched_question"`
	Source          model.Source `json:"source"`
}

type HistoryResponse struct {
	History []model.ChatRecord `json:"history"`
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Mini AI Chatbot API is running"})
}

func (s *Server) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: question is required"})
		return
	}
	result, err := s.Resolver.Resolve(c.Request.Context(), *req.Question)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve question")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, AskResponse{
		Answer:          result.Answer,
		MatchedQuestion: result.MatchedQuestion,
		Source:          result.Source(),
	})
}

func (s *Server) GetHistory(c *gin.Context) {
	history := s.History.Recent()
	if history == nil {
		history = []model.ChatRecord{}
	}
	c.JSON(http.StatusOK, HistoryResponse{History: history})
}
