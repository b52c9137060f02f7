package create_booking

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	createBooking "github.com/m04kA/SMC-SlotBooking/internal/usecase/create_booking"
)

const imagesField = "images"

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	AddressID           int64  `json:"addressId" validate:"required,gt=0"`
	Service             string `json:"service" validate:"required"`
	Note                string `json:"note" validate:"required"`
	Date                string `json:"date" validate:"required"` // RFC 3339 или "2026-07-03T09:00"
	RescheduleBookingID *int64 `json:"rescheduleBookingId,omitempty" validate:"omitempty,gt=0"`

	images []assets.Upload
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(accountID int64) *createBooking.Request {
	return &createBooking.Request{
		AccountID:           accountID,
		AddressID:           r.AddressID,
		Service:             r.Service,
		Note:                r.Note,
		Date:                r.Date,
		Images:              r.images,
		RescheduleBookingID: r.RescheduleBookingID,
	}
}

// parseMultipart читает поля формы и файлы из поля images
func parseMultipart(r *http.Request, maxMemory int64) (*CreateBookingRequest, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}

	req := &CreateBookingRequest{
		Service: r.FormValue("service"),
		Note:    r.FormValue("note"),
		Date:    r.FormValue("date"),
	}

	addressID, err := strconv.ParseInt(r.FormValue("addressId"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid addressId: %w", err)
	}
	req.AddressID = addressID

	if raw := r.FormValue("rescheduleBookingId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rescheduleBookingId: %w", err)
		}
		req.RescheduleBookingID = &id
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File[imagesField] {
			upload, err := readUpload(fh)
			if err != nil {
				return nil, err
			}
			req.images = append(req.images, upload)
		}
	}

	return req, nil
}

func readUpload(fh *multipart.FileHeader) (assets.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return assets.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return assets.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return assets.Upload{Filename: fh.Filename, Data: data}, nil
}

// decodeRequest JSON или multipart/form-data, в зависимости от Content-Type
func decodeRequest(r *http.Request, maxMemory int64) (*CreateBookingRequest, error) {
	if isMultipart(r) {
		return parseMultipart(r, maxMemory)
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
