package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/translate"
)

func (a *app) translateCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "translate <id>",
		Short: "Translate a bill into another language",
		Long: `Translate a bill's title, ministry, summary, status, committee status and
financial implication. On any provider failure the source text is printed
and "fallback" is true.

Example:
  billctl translate 105 --lang hi
  BILLCTL_LLM_PROVIDER=ollama BILLCTL_LLM_MODEL=llama3 billctl translate 104 --lang ta`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := translate.NormalizeLanguage(lang); !ok {
				return fmt.Errorf("unsupported language %q (supported: %v)", lang, translate.Languages())
			}

			s, err := a.settings()
			if err != nil {
				return err
			}
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			bill, ok := st.Bill(args[0])
			if !ok {
				return fmt.Errorf("bill %s not found", args[0])
			}

			provider, err := llm.NewProvider(cmd.Context(), llm.Config{
				Provider: s.LLM.Provider,
				Model:    s.LLM.Model,
				APIKey:   s.LLM.APIKey,
				BaseURL:  s.LLM.BaseURL,
				Timeout:  s.LLM.Timeout,
			})
			if err != nil {
				a.log.Warn("text generation unavailable", slog.Any("err", err))
				provider = nil
			}

			tr := translate.New(provider, translate.Options{Model: s.LLM.Model, Log: a.log})
			res := tr.Translate(cmd.Context(), bill, lang)
			if res.Fallback && res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "translation unavailable: %v\n", res.Err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "hi", "target language ("+fmt.Sprint(translate.Languages())+")")
	return cmd
}
