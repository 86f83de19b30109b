package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"linkkit/internal/config"
	"linkkit/internal/export"
	"linkkit/internal/qr"
	"linkkit/internal/utm"

	"github.com/spf13/cobra"
)

func (a *app) utmCommand() *cobra.Command {
	var (
		base        string
		p           utm.Params
		toClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "utm",
		Short: "Build a campaign-tracking link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			link, err := utm.Build(base, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, link)
			if toClipboard {
				a.copyOut(link)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&base, "base", "", "base URL")
	f.StringVar(&p.Source, "source", "", "utm_source")
	f.StringVar(&p.Medium, "medium", "", "utm_medium")
	f.StringVar(&p.Campaign, "campaign", "", "utm_campaign")
	f.StringVar(&p.Term, "term", "", "utm_term")
	f.StringVar(&p.Content, "content", "", "utm_content")
	f.BoolVar(&toClipboard, "copy", false, "copy the link to the clipboard")
	return cmd
}

type qrFlags struct {
	form     qr.Form
	size     int
	margin   int
	logoSize int
	logoGap  int
	logo     string
	format   string
	out      string
	upload   bool
	utmBase  string
	utm      utm.Params
}

func (a *app) qrCommand() *cobra.Command {
	q := qrFlags{form: qr.DefaultForm()}
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render a styled QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runQR(cmd, &q)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.form.Data, "data", "", "payload to encode")
	f.StringVar(&q.form.Foreground.Text, "fg", q.form.Foreground.Text, "foreground color")
	f.StringVar(&q.form.Background.Text, "bg", q.form.Background.Text, "background color")
	f.IntVar(&q.size, "size", 420, "image size in pixels (200-1200)")
	f.IntVar(&q.margin, "margin", 4, "quiet zone in pixels (0-50)")
	f.StringVar(&q.form.ECLevel, "ec", q.form.ECLevel, "error correction: L, M, Q or H")
	f.StringVar(&q.form.DotsType, "dots", q.form.DotsType, "dot style")
	f.StringVar(&q.form.CornerSquareType, "corner-square", q.form.CornerSquareType, "finder frame style")
	f.StringVar(&q.form.CornerDotType, "corner-dot", q.form.CornerDotType, "finder center style")
	f.StringVar(&q.logo, "logo", "", "image file to place in the center")
	f.IntVar(&q.logoSize, "logo-size", 22, "logo size in percent (5-45)")
	f.IntVar(&q.logoGap, "logo-margin", 6, "gap around the logo in pixels (0-40)")
	f.BoolVar(&q.form.HideBackgroundDots, "hide-bg-dots", q.form.HideBackgroundDots, "clear dots behind the logo")
	f.StringVar(&q.format, "format", "png", "png, jpeg or svg")
	f.StringVarP(&q.out, "out", "o", "", "output file, - for stdout (default qr.<ext>)")
	f.BoolVar(&q.upload, "upload", false, "store the image in the configured export destination")
	f.StringVar(&q.utmBase, "utm-base", "", "encode a UTM link built from this base URL")
	f.StringVar(&q.utm.Source, "utm-source", "", "utm_source")
	f.StringVar(&q.utm.Medium, "utm-medium", "", "utm_medium")
	f.StringVar(&q.utm.Campaign, "utm-campaign", "", "utm_campaign")
	f.StringVar(&q.utm.Term, "utm-term", "", "utm_term")
	f.StringVar(&q.utm.Content, "utm-content", "", "utm_content")
	return cmd
}

func (a *app) runQR(cmd *cobra.Command, q *qrFlags) error {
	format, err := qr.ParseFormat(q.format)
	if err != nil {
		return err
	}

	c := qr.NewCustomizer(qr.NewStyledRenderer(), a.log)
	c.SetColorText(qr.ChannelForeground, q.form.Foreground.Text)
	c.SetColorText(qr.ChannelBackground, q.form.Background.Text)
	if err := c.Apply(func(f *qr.Form) {
		fg, bg := f.Foreground, f.Background
		*f = q.form
		f.Foreground, f.Background = fg, bg
		f.Size = qr.NumberField(strconv.Itoa(q.size))
		f.Margin = qr.NumberField(strconv.Itoa(q.margin))
		f.LogoSize = qr.NumberField(strconv.Itoa(q.logoSize))
		f.LogoMargin = qr.NumberField(strconv.Itoa(q.logoGap))
	}); err != nil {
		return err
	}
	if q.utmBase != "" {
		if _, err := c.BuildUTM(q.utmBase, q.utm); err != nil {
			return err
		}
	}
	if q.logo != "" {
		file, err := os.Open(q.logo)
		if err != nil {
			return fmt.Errorf("open logo: %w", err)
		}
		defer file.Close()
		if err := <-c.LoadLogo(file, ""); err != nil {
			return err
		}
	}

	img, err := c.Download(format)
	if err != nil {
		return err
	}

	if q.upload {
		sink, err := a.exportSink(cmd.Context())
		if err != nil {
			return err
		}
		loc, err := sink.Save(cmd.Context(), format.Ext(), format.ContentType(), img)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, loc)
		return nil
	}

	out := q.out
	if out == "" {
		out = "qr." + format.Ext()
	}
	if out == "-" {
		_, err := a.out.Write(img)
		return err
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintln(a.errOut, "wrote", out)
	return nil
}

// exportSink picks the upload destination from the environment: MinIO when
// MINIO_ENDPOINT is set, otherwise EXPORT_DIR.
func (a *app) exportSink(ctx context.Context) (export.Sink, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	if cfg.Minio.Enabled() {
		return export.NewMinioSink(ctx, export.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	}
	if cfg.ExportDir != "" {
		return export.NewFileSink(cfg.ExportDir)
	}
	return nil, export.ErrNoSink
}
