package root

import (
	"github.com/concoro/concoro-platform/apps/cli/cmd/auth"
	"github.com/concoro/concoro-platform/apps/cli/cmd/sitemap"
	"github.com/concoro/concoro-platform/apps/cli/cmd/slug"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(slug.Command())
	Root().AddCommand(sitemap.Command())
}
