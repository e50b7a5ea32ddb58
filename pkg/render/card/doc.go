// Package card draws a single ID card bitmap from a submission.
//
// A card is 54 × 84 mm in portrait. [Renderer.Rasterize] draws it at
// scale × 96 dpi, so scale 3 gives a 612 × 952 pixel image. All geometry
// below is expressed in 96-dpi pixels and multiplied by the scale before
// drawing, keeping text crisp at every quality level.
//
// Layout, top to bottom:
//
//   - header: school name and address (only without a background image,
//     since backgrounds carry their own header artwork)
//   - photo row: stream on the left, photo in the centre, blood group and
//     session on the right
//   - student name
//   - class/section, roll and admission numbers on one line
//   - labelled detail rows (parents, address, date of birth, contacts)
//   - a QR code of the submission id in the bottom-right corner
//
// Only fields selected by the school's forms are printed.
package card
