// Package mdtty renders Markdown to ANSI for terminal display.
//
// A document is parsed into a stream of structural events (see package
// event) which a single pass state machine turns into styled terminal
// output. Text is wrapped at the terminal width with quote markers and list
// indentation carried onto wrapped lines. Depending on the terminal's
// capabilities, links become OSC 8 hyperlinks, images are shown inline and
// code blocks are syntax highlighted. Anything the terminal cannot show is
// rendered as text instead and reported as a Warning.
//
// Example:
//
//	caps := termcap.Detect(nil, 80)
//	res, err := mdtty.Render(ctx, mdtty.RenderRequest{
//		Reader:       strings.NewReader("# Hello\n\nMarkdown in, ANSI out.\n"),
//		Writer:       os.Stdout,
//		Capabilities: caps,
//		Theme:        mdtty.DefaultTheme(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range res.Warnings {
//		log.Print(w)
//	}
//
// Rendering can be customized with RenderOptions such as numbered link
// references.
package mdtty
