package cli

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dashlab/labctl/internal/docsite"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Build and serve the project documentation",
}

var docsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the documentation site",
	Long: `Regenerate the static documentation tree from the Markdown sources.
Every invocation is a full rebuild: the output directory is cleared first
so removed pages do not linger.`,
	Args: cobra.NoArgs,
	RunE: runDocsBuild,
}

var docsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Rebuild the documentation site and serve it over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runDocsServe,
}

func init() {
	docsCmd.AddCommand(docsBuildCmd)
	docsCmd.AddCommand(docsServeCmd)
}

func runDocsBuild(cmd *cobra.Command, args []string) error {
	builder := docsite.New(cfg.Docs.SourceDir, cfg.Docs.OutputDir, cfg.Docs.Title)

	fmt.Printf("%s📚 Building documentation%s\n", HeaderStyle, Reset)
	fmt.Printf("Source: %s\n", cfg.Docs.SourceDir)
	fmt.Printf("Output: %s\n", cfg.Docs.OutputDir)

	if err := builder.Build(); err != nil {
		return err
	}

	fmt.Printf("%s✅ Documentation built%s\n", SuccessStyle, Reset)
	return nil
}

func runDocsServe(cmd *cobra.Command, args []string) error {
	if err := runDocsBuild(cmd, args); err != nil {
		return err
	}

	address := fmt.Sprintf(":%d", cfg.Docs.Port)
	fmt.Printf("\n🌐 Serving documentation at http://localhost%s\n", address)
	fmt.Println("Press Ctrl+C to stop")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Docs.OutputDir))))

	return router.Run(address)
}
