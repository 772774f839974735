package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkong/wechatbackends/pkg/client"
)

func newSendCmd(a *app) *cobra.Command {
	var to []string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to subscribers, one request per recipient",
	}
	cmd.PersistentFlags().StringSliceVar(&to, "to", nil, "recipient fakeids, in sending order")
	_ = cmd.MarkPersistentFlagRequired("to")

	text := &cobra.Command{
		Use:   "text <content>",
		Short: "Send a text message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sendToMany(cmd, to, client.TextMessage{Content: args[0]})
		},
	}

	var imageFile string
	image := &cobra.Command{
		Use:   "image [file_id]",
		Short: "Send a media library image, or upload --file first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID := ""
			switch {
			case len(args) == 1 && imageFile != "":
				return fmt.Errorf("give a file id or --file, not both")
			case len(args) == 1:
				fileID = args[0]
			case imageFile != "":
				c, err := a.session(cmd)
				if err != nil {
					return err
				}
				data, err := os.ReadFile(imageFile)
				if err != nil {
					return err
				}
				if fileID, err = c.UploadImage(cmd.Context(), data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s as %s\n", imageFile, fileID)
			default:
				return fmt.Errorf("a file id or --file is required")
			}
			return a.sendToMany(cmd, to, client.ImageMessage{FileID: fileID})
		},
	}
	image.Flags().StringVar(&imageFile, "file", "", "local image to upload and send")

	appmsg := &cobra.Command{
		Use:   "appmsg <app_msg_id>",
		Short: "Send an article batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sendToMany(cmd, to, client.AppMessage{AppMsgID: args[0]})
		},
	}

	cmd.AddCommand(text, image, appmsg)
	return cmd
}

// sendToMany sends msg in order and reports how far it got.
func (a *app) sendToMany(cmd *cobra.Command, to []string, msg client.Message) error {
	c, err := a.session(cmd)
	if err != nil {
		return err
	}

	docs, sendErr := c.SendMessageToMany(cmd.Context(), to, msg)
	for _, doc := range docs {
		if err := a.printDocument(cmd.OutOrStdout(), doc); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "sent %s to %d of %d recipients\n", msg.Type(), len(docs), len(to))
	if sendErr != nil {
		return fmt.Errorf("stopped at %s: %w", to[len(docs)], sendErr)
	}
	return nil
}
