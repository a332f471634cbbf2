// Package devserver is a stand-in for the external location backend, close
// enough in shape for development and end-to-end tests: same login response
// envelope (payload under "in", invalid credentials signalled with an
// application-level 401 inside a transport 200), same upload endpoints, same
// 401/498 rejection codes, and token rotation on uploads.
package devserver

import (
	"log"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trackiq_agent/internal/models"
)

type Server struct {
	db       *gorm.DB
	tokenTTL time.Duration
	router   *gin.Engine
}

// New migrates the backing tables and wires the routes.
func New(db *gorm.DB, tokenTTL time.Duration) (*Server, error) {
	if err := db.AutoMigrate(&models.User{}, &models.ReceivedLocation{}); err != nil {
		return nil, err
	}

	s := &Server{db: db, tokenTTL: tokenTTL}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	user := r.Group("/user")
	{
		user.POST("/userlogin", s.LoginUser)
		user.POST("/signup", s.SignupUser)
	}

	tracking := r.Group("/bd/locationTracking")
	tracking.Use(s.RequireAuth())
	{
		tracking.POST("/updateUserLocation", s.UploadLocation)
		tracking.POST("/updateUserLocationBatch", s.UploadLocationBatch)
	}

	s.router = r
	return s, nil
}

// Router exposes the gin engine for main and for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Seed ensures a known account exists so the agent can log in out of the box.
func (s *Server) Seed(name, email, password string) error {
	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Name:                  name,
		Email:                 email,
		Password:              string(hash),
		IsOnboardingCompleted: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("Seeded devserver account %s", email)
	return nil
}
