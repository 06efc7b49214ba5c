package get

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
)

// ErrDocumentNotFound is returned when the index exists but the id does not
var ErrDocumentNotFound = errors.New("document not found")

func newGetDocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doc INDEX ID",
		Aliases: []string{"document"},
		Short:   "Fetch a document by id",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetDoc(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runGetDoc(cmd *cobra.Command, index, id string) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	admin, err := s.Single()
	if err != nil {
		return err
	}
	doc, found, err := admin.GetDocument(ctx, index, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, index, id)
	}
	return s.Print(cmdutil.DocumentView{Document: doc})
}
