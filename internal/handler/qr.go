package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"linkkit/internal/qr"
	"linkkit/internal/utm"
)

// maxQRBody bounds request bodies; logos travel inline as data URLs.
const maxQRBody = 4 << 20

type utmRequest struct {
	BaseURL string `json:"base_url"`
	utm.Params
}

type utmResponse struct {
	URL string `json:"url"`
}

// qrRequest mirrors the customizer inputs. Omitted fields keep their
// defaults.
type qrRequest struct {
	Data               string         `json:"data"`
	Foreground         string         `json:"foreground"`
	Background         string         `json:"background"`
	DotsType           string         `json:"dots_type"`
	CornerSquareType   string         `json:"corner_square_type"`
	CornerDotType      string         `json:"corner_dot_type"`
	Size               qr.NumberField `json:"size"`
	Margin             qr.NumberField `json:"margin"`
	ECLevel            string         `json:"ec_level"`
	LogoSize           qr.NumberField `json:"logo_size"`
	LogoMargin         qr.NumberField `json:"logo_margin"`
	HideBackgroundDots *bool          `json:"hide_background_dots"`
	// Logo is a data: URL.
	Logo string      `json:"logo"`
	UTM  *utmRequest `json:"utm"`
}

func (q *qrRequest) apply(c *qr.Customizer) error {
	if q.Foreground != "" {
		c.SetColorText(qr.ChannelForeground, q.Foreground)
	}
	if q.Background != "" {
		c.SetColorText(qr.ChannelBackground, q.Background)
	}
	if q.Logo != "" {
		if _, err := c.CompleteLogo(c.BeginLogo(), q.Logo); err != nil {
			return err
		}
	}
	if err := c.Apply(func(f *qr.Form) {
		f.Data = q.Data
		setIf(&f.DotsType, q.DotsType)
		setIf(&f.CornerSquareType, q.CornerSquareType)
		setIf(&f.CornerDotType, q.CornerDotType)
		setIf(&f.ECLevel, q.ECLevel)
		setIf(&f.Size, q.Size)
		setIf(&f.Margin, q.Margin)
		setIf(&f.LogoSize, q.LogoSize)
		setIf(&f.LogoMargin, q.LogoMargin)
		if q.HideBackgroundDots != nil {
			f.HideBackgroundDots = *q.HideBackgroundDots
		}
	}); err != nil {
		return err
	}
	if q.UTM != nil {
		if _, err := c.BuildUTM(q.UTM.BaseURL, q.UTM.Params); err != nil {
			return err
		}
	}
	return nil
}

func setIf[T ~string](dst *T, v T) {
	if v != "" {
		*dst = v
	}
}

func (h *Handler) BuildUTM(w http.ResponseWriter, r *http.Request) {
	var req utmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	link, err := utm.Build(req.BaseURL, req.Params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, &utmResponse{URL: link})
}

// renderQR decodes the request and renders it in the requested format.
func (h *Handler) renderQR(w http.ResponseWriter, r *http.Request) (qr.Format, []byte, bool) {
	format, err := qr.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	var req qrRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQRBody)).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return "", nil, false
	}

	c := qr.NewCustomizer(h.NewRenderer(), h.logger(r))
	err = req.apply(c)
	var img []byte
	if err == nil {
		img, err = c.Download(format)
	}
	if err != nil {
		h.qrError(w, r, err)
		return "", nil, false
	}
	return format, img, true
}

func (h *Handler) qrError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, qr.ErrBadLogo), errors.Is(err, utm.ErrMissingBase), errors.Is(err, utm.ErrNoParams):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger(r).WithError(err).Error("qr render failed")
		http.Error(w, "could not render QR code", http.StatusUnprocessableEntity)
	}
}

func (h *Handler) RenderQR(w http.ResponseWriter, r *http.Request) {
	format, img, ok := h.renderQR(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `inline; filename="qr.`+format.Ext()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Write(img)
}

type exportResponse struct {
	Location string `json:"location"`
	Format   string `json:"format"`
}

func (h *Handler) ExportQR(w http.ResponseWriter, r *http.Request) {
	if h.Exports == nil {
		http.Error(w, "export is not configured", http.StatusServiceUnavailable)
		return
	}
	format, img, ok := h.renderQR(w, r)
	if !ok {
		return
	}
	loc, err := h.Exports.Save(r.Context(), format.Ext(), format.ContentType(), img)
	if err != nil {
		h.logger(r).WithError(err).Error("qr export upload failed")
		http.Error(w, "could not store export", http.StatusBadGateway)
		return
	}
	h.logger(r).WithField("location", loc).Info("qr exported")
	writeJSON(w, http.StatusCreated, &exportResponse{Location: loc, Format: string(format)})
}
