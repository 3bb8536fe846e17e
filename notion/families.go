/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notion

import (
	"github.com/suparena/typedmodel/registry"
)

// Discriminator families for rich text and files.
var (
	RichTextType = registry.NewFamily("RichTextType", "text", "mention", "equation")
	FileType     = registry.NewFamily("FileType", "external", "file")
)

var (
	RichTextText     = RichTextType.MustValue("text")
	RichTextMention  = RichTextType.MustValue("mention")
	RichTextEquation = RichTextType.MustValue("equation")

	FileExternal = FileType.MustValue("external")
	FileHosted   = FileType.MustValue("file")
)

// MentionTargets are the mention kinds accepted as a mention payload.
var MentionTargets = []string{"user", "page", "date"}

// Register binds the rich text and file families to their payload types.
func Register(reg *registry.Registry) error {
	bindings := []struct {
		value   registry.Value
		payload registry.PayloadType
	}{
		{RichTextText, registry.Struct[Text]()},
		{RichTextMention, registry.Literal(MentionTargets...)},
		{RichTextEquation, registry.Struct[Equation]()},
		{FileExternal, registry.Struct[External]()},
		{FileHosted, registry.Struct[File]()},
	}
	for _, b := range bindings {
		if err := reg.Bind(b.value, b.payload); err != nil {
			return err
		}
	}
	return nil
}
