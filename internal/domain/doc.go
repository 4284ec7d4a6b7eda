// Package domain implements the color-scale, legend, statistics, and district
// aggregation engine for municipal climate-anomaly choropleths.
//
// # Data Source
//
// Municipality feature records and climate-index metadata come from the
// upstream climate data API. Each feature carries one anomaly value for a
// (index, scenario, period) selection: the deviation of a climate quantity
// from the historical baseline period, per municipality. Values may be null
// when no model output exists for a municipality; null and NaN entries are
// filtered before any statistic or domain computation and never cause errors.
//
// # Index Metadata Conventions
//
// The metadata catalog has shipped under two successive schemas. The old
// schema names the fields color_scheme / color_palette_type / risk_direction;
// the current one palette_family / palette_application / anomaly_direction.
// [NormalizeIndexMetadata] reconciles both into one canonical form at the
// boundary so the engine never branches on which schema arrived.
//
// Palette families (fixed catalog, unknown values fall back to "RdBu_r"):
//
//	RdBu_r  blue → white → red   (positive anomaly drawn hot)
//	BuRd    blue → white → red   (alias kept for old catalog rows)
//	RdBu    red  → white → blue  (positive anomaly drawn cold)
//
// Palette application: only "diverging" is defined. A diverging scale is
// symmetric about zero with domain [-absMax, 0, +absMax] where absMax is the
// largest absolute value in the sample. Interpolation runs in CIE LAB so the
// gradient is perceptually even; this matters for rendering parity with the
// dashboard and must not be switched to plain RGB lerp.
//
// Anomaly direction codes describe what a positive deviation means for the
// index and feed interpretation labels ONLY. Direction must never influence
// palette or domain selection: letting it flip colors made index pairs with
// the same palette family render inconsistently in earlier catalog revisions.
//
//	positive_bad      positive anomaly is a worse outcome
//	positive_good     positive anomaly is a better outcome
//	positive_warming  positive anomaly indicates warming
//	negative_warming  negative anomaly indicates warming
//	higher_worse      old-schema equivalent of positive_bad
//	lower_worse       old-schema equivalent of positive_good
//	neutral           no risk polarity
//
// # Statistics Conventions
//
// The median of an even-length sample is the element at index n/2 of the
// sorted sequence, not the average of the two middle elements.
// The dashboard has always displayed that value; keep it for compatibility.
// Standard deviations are population standard deviations (divide by n).
//
// # Degenerate Inputs
//
// Empty or all-invalid samples yield all-zero statistics and the default
// domain [-1, 0, 1]; missing metadata yields a constant neutral scale over
// [0, 1]. Bad upstream data is a data-quality issue, not a programming error,
// and must never crash styling.
package domain
