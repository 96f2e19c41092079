package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

const (
	maxImageBytes       = 15 << 20
	multipartMemory     = 32 << 20
	formOverheadBytes   = 2 << 20
	imagesField         = "images"
	imagesToRemoveField = "imagesToRemove"
)

// listingForm is a parsed create or update request.
type listingForm struct {
	Input          domain.ListingInput
	ImagesToRemove []string
	Uploads        []domain.Upload
}

// flexString accepts a JSON string, number or null, so "450.000" and 450000 both
// work. A present null reads as an empty value, which clears the field.
type flexString struct {
	value string
	set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	f.set = true
	switch {
	case bytes.Equal(b, []byte("null")):
		f.value = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		return json.Unmarshal(b, &f.value)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	f.value = n.String()
	return nil
}

// ptr is nil when the key was absent from the payload.
func (f flexString) ptr() *string {
	if !f.set {
		return nil
	}
	s := f.value
	return &s
}

type listingPayload struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Category         *string    `json:"category"`
	Brand            *string    `json:"brand"`
	Series           *string    `json:"series"`
	Model            *string    `json:"model"`
	Price            flexString `json:"price"`
	Year             flexString `json:"year"`
	Mileage          flexString `json:"mileage"`
	Color            *string    `json:"color"`
	BodyType         *string    `json:"bodyType"`
	FuelType         *string    `json:"fuelType"`
	TransmissionType *string    `json:"transmissionType"`
	EngineVolume     flexString `json:"engineVolume"`
	EnginePower      flexString `json:"enginePower"`
	Urgent           *bool      `json:"urgent"`
	Classic          *bool      `json:"classic"`
	Modified         *bool      `json:"modified"`
	ImagesToRemove   []string   `json:"imagesToRemove"`
}

func (p listingPayload) input() domain.ListingInput {
	return domain.ListingInput{
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		Brand:            p.Brand,
		Series:           p.Series,
		Model:            p.Model,
		Price:            p.Price.ptr(),
		Year:             p.Year.ptr(),
		Mileage:          p.Mileage.ptr(),
		Color:            p.Color,
		BodyType:         p.BodyType,
		FuelType:         p.FuelType,
		TransmissionType: p.TransmissionType,
		EngineVolume:     p.EngineVolume.ptr(),
		EnginePower:      p.EnginePower.ptr(),
		Urgent:           p.Urgent,
		Classic:          p.Classic,
		Modified:         p.Modified,
	}
}

// parseListingForm reads a multipart or JSON body. A field that is present in
// the request is set on the input, even when empty.
func parseListingForm(w http.ResponseWriter, r *http.Request, maxImages int) (*listingForm, error) {
	limit := int64(maxImages)*maxImageBytes + formOverheadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r)
	case "application/json":
		var p listingPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, bodyErr(err)
		}
		return &listingForm{Input: p.input(), ImagesToRemove: p.ImagesToRemove}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidArgument, mediaType)
	}
}

func parseMultipart(r *http.Request) (*listingForm, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, bodyErr(err)
	}
	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()
	text := func(key string) *string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}

	in := domain.ListingInput{
		Title:            text("title"),
		Description:      text("description"),
		Category:         text("category"),
		Brand:            text("brand"),
		Series:           text("series"),
		Model:            text("model"),
		Price:            text("price"),
		Year:             text("year"),
		Mileage:          text("mileage"),
		Color:            text("color"),
		BodyType:         text("bodyType"),
		FuelType:         text("fuelType"),
		TransmissionType: text("transmissionType"),
		EngineVolume:     text("engineVolume"),
		EnginePower:      text("enginePower"),
	}
	var err error
	if in.Urgent, err = formBool(text("urgent"), "urgent"); err != nil {
		return nil, err
	}
	if in.Classic, err = formBool(text("classic"), "classic"); err != nil {
		return nil, err
	}
	if in.Modified, err = formBool(text("modified"), "modified"); err != nil {
		return nil, err
	}

	var remove []string
	for _, key := range []string{imagesToRemoveField, imagesToRemoveField + "[]"} {
		for _, v := range form.Value[key] {
			if v = strings.TrimSpace(v); v != "" {
				remove = append(remove, v)
			}
		}
	}

	var files []*multipart.FileHeader
	files = append(files, form.File[imagesField]...)
	files = append(files, form.File[imagesField+"[]"]...)
	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}

	return &listingForm{Input: in, ImagesToRemove: remove, Uploads: uploads}, nil
}

func formBool(raw *string, field string) (*bool, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		b := false
		return &b, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrValidationFailed, field)
	}
	return &b, nil
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	if fh.Size > maxImageBytes {
		return domain.Upload{}, fmt.Errorf("%w: image %q exceeds %d MB", domain.ErrPayloadTooLarge, fh.Filename, maxImageBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: cannot read image %q", domain.ErrInvalidArgument, fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: cannot read image %q", domain.ErrInvalidArgument, fh.Filename)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return domain.Upload{}, fmt.Errorf("%w: %q is not an image", domain.ErrValidationFailed, fh.Filename)
	}
	return domain.Upload{FileName: fh.Filename, Data: data}, nil
}

func bodyErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrPayloadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidArgument, err)
}
