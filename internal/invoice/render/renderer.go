package render

import (
	"context"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
)

// Renderer produces the HTML email body and the PDF attachment for an
// invoice. Company settings are resolved per render so edits show up without
// a restart.
type Renderer struct {
	settings settingsdomain.Provider
	html     *htmlRenderer
}

func New(settings settingsdomain.Provider) *Renderer {
	return &Renderer{
		settings: settings,
		html:     newHTMLRenderer(),
	}
}

func (r *Renderer) HTML(ctx context.Context, inv *domain.Invoice) (string, error) {
	view, err := r.view(ctx, inv)
	if err != nil {
		return "", err
	}
	return r.html.render(view)
}

func (r *Renderer) PDF(ctx context.Context, inv *domain.Invoice) ([]byte, error) {
	view, err := r.view(ctx, inv)
	if err != nil {
		return nil, err
	}
	return renderPDF(view)
}

func (r *Renderer) view(ctx context.Context, inv *domain.Invoice) (View, error) {
	settings, err := r.settings.All(ctx)
	if err != nil {
		return View{}, err
	}
	return BuildView(inv, settings), nil
}
