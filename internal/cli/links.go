package cli

import (
	"fmt"

	"linkkit/internal/model"
	"linkkit/internal/repository"
	"linkkit/internal/service"

	"github.com/spf13/cobra"
)

type storeFlags struct {
	path string
	base string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "store", defaultStorePath(), "JSON file holding short links")
	cmd.Flags().StringVar(&f.base, "base", "http://localhost:8080/", "page short links point at")
}

func (a *app) service(f *storeFlags) (*service.Service, error) {
	store, err := repository.NewFileStore(f.path)
	if err != nil {
		return nil, err
	}
	return service.NewService(store, nil, f.base, a.log), nil
}

func (a *app) shortenCommand() *cobra.Command {
	var (
		sf          storeFlags
		toClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "shorten URL",
		Short: "Store URL under a fresh short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(&sf)
			if err != nil {
				return err
			}
			link, err := svc.Shorten(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, link.ShortURL)
			if toClipboard {
				a.copyOut(link.ShortURL)
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "copy the short link to the clipboard")
	return cmd
}

func (a *app) openCommand() *cobra.Command {
	var sf storeFlags
	cmd := &cobra.Command{
		Use:   "open LINK",
		Short: "Resolve a short link and print where it goes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(&sf)
			if err != nil {
				return err
			}
			l, err := svc.Land(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch l.Kind {
			case model.LandingRedirect:
				fmt.Fprintln(a.out, l.Target)
			case model.LandingNotFound:
				fmt.Fprintf(a.out, "URL Not Found: short code %q doesn't exist.\nCreate a new short URL at %s\n", l.Code, l.Home)
				return service.ErrNotFound
			default:
				fmt.Fprintln(a.out, "no short code in link")
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var sf storeFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored short links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(&sf)
			if err != nil {
				return err
			}
			links, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range links {
				fmt.Fprintf(a.out, "%s\t%s\n", l.ShortURL, l.OriginalURL)
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}
