/*
tilemask converts multi-species survey predictions from the Pl@ntNet
identification API into annotation artifacts for an image labeling platform.

The survey endpoint tiles a source photo and returns one species guess per
tile with a confidence score.  This package resolves those competing tile
claims into a single composite label raster with a deterministic per species
color legend, renders the raster and per species binary masks to files, and
reshapes the result into classification, bounding box, and segmentation mask
import records.

The root package holds the read-only species catalog shared by all pipeline
stages.  See the resolve, render, survey and export subpackages, and the
example subdirectory for the CLI pipeline.
*/
package tilemask
