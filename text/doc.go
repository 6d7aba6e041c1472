// Package text renders UI strings as textured meshes.
//
// A FontRenderer keeps one text box per caller-chosen id. Each box is a
// mesh of glyph quads whose texture coordinates point into a glyph atlas
// shared by every box of the renderer. Strings are normalized to NFC and
// shaped with go-text/typesetting; glyphs are rasterized from the font
// outlines with golang.org/x/image.
//
// RenderText stages the box into whatever pass and batch are active on the
// stager, usually the UI pass of a render.Service:
//
//	fr, err := text.NewFontRenderer(svc.Library(), text.WithSize(18))
//	if err != nil {
//	    return err
//	}
//	defer fr.Close()
//
//	svc.BeginPass(pass.UIPassID)
//	svc.BeginRenderBatch("hud")
//	fr.RenderText(10, 20, 1, "Frame 42", svc)
//	svc.EndRenderBatch()
//	svc.EndPass()
//
// Box coordinates are in pixels with y growing up; (x, y) is the start of
// the baseline.
package text
