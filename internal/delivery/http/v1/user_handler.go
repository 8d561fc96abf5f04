package v1

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/png" // registered for image.Decode

	"go-matching-backend/internal/delivery/http/middleware"
	"go-matching-backend/internal/delivery/http/response"
	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
	"go-matching-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	photoMaxDimension = 1024
	photoJPEGQuality  = 85
)

type UserHandler struct {
	userUC    domain.UserUsecase
	maxUpload int64
}

func NewUserHandler(public, protected *gin.RouterGroup, userUC domain.UserUsecase, maxUpload int64, uploadLimiter gin.HandlerFunc) {
	handler := &UserHandler{userUC: userUC, maxUpload: maxUpload}

	// Onboarding happens before the caller has an identity.
	public.POST("/users/onboarding", uploadLimiter, handler.Onboard)

	protected.GET("/users/me", handler.GetMe)
}

func (h *UserHandler) Onboard(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	videoFile, videoHeader, err := c.Request.FormFile("video")
	if err != nil {
		c.Error(apperror.BadRequest("Introduction video is required"))
		return
	}
	defer videoFile.Close()

	if !h.validateUpload(c, videoFile, videoHeader, security.ValidateVideo) {
		return
	}

	input := &domain.OnboardingInput{
		VideoName: videoHeader.Filename,
		Video:     videoFile,
		Latitude:  parseCoord(c.PostForm("latitude")),
		Longitude: parseCoord(c.PostForm("longitude")),
	}

	if photoFile, photoHeader, err := c.Request.FormFile("photo"); err == nil {
		defer photoFile.Close()
		if !h.validateUpload(c, photoFile, photoHeader, security.ValidateImage) {
			return
		}
		resized, err := normalizePhoto(photoFile)
		if err != nil {
			c.Error(apperror.BadRequest("Profile photo could not be decoded"))
			return
		}
		input.PhotoName = jpegName(photoHeader.Filename)
		input.Photo = bytes.NewReader(resized)
	}

	user, err := h.userUC.Onboard(c, input)
	if err != nil {
		c.Error(err)
		return
	}

	security.Default().LogEvent(security.EventUploadAccepted,
		zap.Int64("user_id", user.ID),
		zap.String("filename", videoHeader.Filename),
		zap.Int64("size", videoHeader.Size),
		zap.String("ip", c.ClientIP()),
	)

	response.Success(c, http.StatusAccepted, "Onboarding started", user)
}

// GetMe returns the caller's own profile; clients poll it until status
// leaves PROCESSING.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	user, err := h.userUC.GetProfile(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User profile", user)
}

type validateFunc func(filename string, head []byte, detectedMIME string) security.FileValidationResult

// validateUpload runs the 3-layer file check on the first 512 bytes and
// rewinds the file for the storage write.
func (h *UserHandler) validateUpload(c *gin.Context, file multipart.File, header *multipart.FileHeader, validate validateFunc) bool {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		c.Error(apperror.Internal(fmt.Errorf("read upload head: %w", err)))
		return false
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.Error(apperror.Internal(fmt.Errorf("rewind upload: %w", err)))
		return false
	}

	result := validate(header.Filename, head[:n], header.Header.Get("Content-Type"))
	if !result.Valid {
		security.Default().LogEvent(security.EventUploadRejected,
			zap.String("filename", header.Filename),
			zap.String("reason", result.Error),
			zap.String("ip", c.ClientIP()),
		)
		c.Error(apperror.BadRequest("Invalid upload: " + result.Error))
		return false
	}
	return true
}

// normalizePhoto bounds the profile photo to photoMaxDimension and
// re-encodes it as JPEG, stripping whatever the camera produced.
func normalizePhoto(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newWidth, newHeight := width, height
	if width >= height && width > photoMaxDimension {
		newWidth = photoMaxDimension
		newHeight = int(float64(height) * float64(photoMaxDimension) / float64(width))
	} else if height > width && height > photoMaxDimension {
		newHeight = photoMaxDimension
		newWidth = int(float64(width) * float64(photoMaxDimension) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: photoJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jpegName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
