package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trackiq_agent/internal/models"
)

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupUser registers a devserver account.
func (s *Server) SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Name:                  input.Name,
		Email:                 input.Email,
		Password:              string(hash),
		IsOnboardingCompleted: false,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"email": user.Email})
}

type loginBody struct {
	EmailID  string `json:"email_id" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser mimics the real backend's double signalling: bad credentials come
// back as a transport 200 whose body carries status 401, and the payload is
// wrapped under "in".
func (s *Server) LoginUser(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rejected := func() {
		c.JSON(http.StatusOK, gin.H{
			"message": "Invalid email or password",
			"status":  401,
		})
	}

	var user models.User
	if err := s.db.Where("email = ?", body.EmailID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rejected()
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		rejected()
		return
	}

	token, err := GenerateToken(user.Email, s.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"in": gin.H{
			"token":                   token,
			"email":                   user.Email,
			"is_onboarding_completed": user.IsOnboardingCompleted,
			"message":                 "success",
		},
		"message": "success",
		"status":  200,
	})
}

type uploadItem struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         *float64 `json:"accuracy"`
	Altitude         *float64 `json:"altitude"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy"`
	Heading          *float64 `json:"heading"`
	Speed            *float64 `json:"speed"`
	DeviceID         string   `json:"deviceId"`
	DeviceName       string   `json:"deviceName"`
	DeviceModel      string   `json:"deviceModel"`
	DeviceBrand      string   `json:"deviceBrand"`
	OSName           string   `json:"osName"`
	OSVersion        string   `json:"osVersion"`
	AppVersion       string   `json:"appVersion"`
	Timestamp        string   `json:"timestamp"`
	ClientTimestamp  int64    `json:"clientTimestamp"`
	IsBackground     bool     `json:"isBackground"`
}

type uploadBatchBody struct {
	Items []uploadItem `json:"items"`
}

// UploadLocation accepts one sample.
func (s *Server) UploadLocation(c *gin.Context) {
	var item uploadItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location payload: " + err.Error()})
		return
	}

	email := c.GetString("email")
	if err := s.db.Create(s.toRecord(email, item)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store location: " + err.Error()})
		return
	}

	s.acknowledge(c, 1)
}

// UploadLocationBatch accepts the {items: [...]} wrapper.
func (s *Server) UploadLocationBatch(c *gin.Context) {
	var body uploadBatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch payload: " + err.Error()})
		return
	}

	email := c.GetString("email")
	records := make([]*models.ReceivedLocation, 0, len(body.Items))
	for _, item := range body.Items {
		records = append(records, s.toRecord(email, item))
	}
	if len(records) > 0 {
		if err := s.db.Create(records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store locations: " + err.Error()})
			return
		}
	}

	s.acknowledge(c, len(records))
}

// acknowledge responds with the ok envelope, carrying a rotated token when
// RequireAuth decided the presented one is near expiry.
func (s *Server) acknowledge(c *gin.Context, count int) {
	data := gin.H{}
	if rotated := c.GetString("rotated_token"); rotated != "" {
		data["token"] = rotated
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    data,
		"message": "ok",
		"count":   count,
	})
}

func (s *Server) toRecord(email string, item uploadItem) *models.ReceivedLocation {
	return &models.ReceivedLocation{
		UserEmail:        email,
		Latitude:         item.Latitude,
		Longitude:        item.Longitude,
		Accuracy:         item.Accuracy,
		Altitude:         item.Altitude,
		AltitudeAccuracy: item.AltitudeAccuracy,
		Heading:          item.Heading,
		Speed:            item.Speed,
		DeviceID:         item.DeviceID,
		DeviceName:       item.DeviceName,
		DeviceModel:      item.DeviceModel,
		DeviceBrand:      item.DeviceBrand,
		OSName:           item.OSName,
		OSVersion:        item.OSVersion,
		AppVersion:       item.AppVersion,
		Timestamp:        item.Timestamp,
		ClientTimestamp:  item.ClientTimestamp,
		IsBackground:     item.IsBackground,
	}
}
