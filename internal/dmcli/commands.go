package dmcli

import (
	"fmt"
	"strconv"

	"github.com/damoang/angple-messenger/pkg/syncclient"
	"github.com/spf13/cobra"
)

func parseID(raw, what string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func newInboxCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List conversations, most recent first (* marks unread)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inbox := syncclient.NewInbox(opts.api())
			if err := inbox.Refresh(cmd.Context()); err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), inbox.Conversations())
			}
			printInbox(cmd.OutOrStdout(), inbox.Conversations())
			return nil
		},
	}
}

func newOpenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <conversation-id>",
		Short: "Print a conversation and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "conversation id")
			if err != nil {
				return err
			}
			tl := syncclient.NewTimeline(opts.api(), id)
			if err := tl.Refresh(cmd.Context()); err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), tl.Entries())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation #%d with %s\n", id, tl.OtherParticipant().DisplayName)
			for _, e := range tl.Entries() {
				printEntry(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}

func newStartCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <user-id>",
		Short: "Find or create the conversation with a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := opts.api().StartConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]uint64{"conversation_id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation #%d\n", id)
			return nil
		},
	}
}

type sendFlags struct {
	to             string
	conversationID uint64
	replyTo        uint64
	attachmentURL  string
	attachmentType string
}

func newSendCommand(opts *RootOptions) *cobra.Command {
	f := &sendFlags{}
	cmd := &cobra.Command{
		Use:   "send [content]",
		Short: "Send a message to a member (--to) or into a conversation (--conversation)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(args) == 1 {
				content = args[0]
			}
			var replyTo *uint64
			if f.replyTo != 0 {
				replyTo = &f.replyTo
			}

			api := opts.api()
			switch {
			case f.conversationID != 0:
				tl := syncclient.NewTimeline(api, f.conversationID)
				entry, err := tl.Send(cmd.Context(), content, syncclient.SendOptions{
					AttachmentURL:  f.attachmentURL,
					AttachmentType: f.attachmentType,
					ReplyToID:      replyTo,
				})
				if err != nil {
					return err
				}
				return printSent(cmd, opts, f.conversationID, entry.Message)
			case f.to != "":
				res, err := api.Send(cmd.Context(), syncclient.SendRequest{
					RecipientID:    f.to,
					Content:        content,
					AttachmentURL:  f.attachmentURL,
					AttachmentType: f.attachmentType,
					ReplyToID:      replyTo,
				})
				if err != nil {
					return err
				}
				return printSent(cmd, opts, res.ConversationID, res.Message)
			default:
				return fmt.Errorf("either --to or --conversation is required")
			}
		},
	}

	cmd.Flags().StringVar(&f.to, "to", "", "recipient member id")
	cmd.Flags().Uint64Var(&f.conversationID, "conversation", 0, "conversation id")
	cmd.Flags().Uint64Var(&f.replyTo, "reply-to", 0, "message id to quote")
	cmd.Flags().StringVar(&f.attachmentURL, "attachment-url", "", "URL returned by the attachment upload")
	cmd.Flags().StringVar(&f.attachmentType, "attachment-type", "", "image, file or interview")
	cmd.MarkFlagsMutuallyExclusive("to", "conversation")
	return cmd
}

func printSent(cmd *cobra.Command, opts *RootOptions, conversationID uint64, m syncclient.Message) error {
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), syncclient.SendResult{ConversationID: conversationID, Message: m})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent message #%d in conversation #%d\n", m.ID, conversationID)
	return nil
}

func newReactCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "react <message-id> <emoji>",
		Short: "Toggle a reaction (the same emoji again removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "message id")
			if err != nil {
				return err
			}
			res, err := opts.api().React(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if len(res.Reactions) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Message #%d has no reactions\n", id)
				return nil
			}
			for _, r := range res.Reactions {
				mine := ""
				if r.Mine {
					mine = " (you)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d%s\n", r.Emoji, r.Count, mine)
			}
			return nil
		},
	}
}

func newUnsendCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unsend <message-id>",
		Short: "Retract one of your messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "message id")
			if err != nil {
				return err
			}
			if err := opts.api().Unsend(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message #%d unsent\n", id)
			return nil
		},
	}
}

func newWhoisCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whois <user-id>",
		Short: "Show a member summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.api().UserSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s\n", summary.DisplayName, summary.ID, summary.RoleLabel)
			return nil
		},
	}
}
