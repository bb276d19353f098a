// Package bbbc005 prepares the BBBC005 synthetic microscopy image set for a
// segmentation training pipeline.
//
// The package covers four concerns:
//
//  1. Filename parsing - ImageID, NumberOfCells and ParseImageName decode the
//     BBBC005 naming convention, and ImageName strips a path down to its stem.
//
//  2. Stratified splitting - SplitData partitions index-aligned image and
//     target paths into training and validation subsets, preserving the
//     proportion of every cell count. The seed is always passed explicitly.
//
//  3. Dataset fetching - DownloadData (or a Fetcher built with NewFetcher)
//     downloads and extracts the image and ground-truth archives once.
//
//  4. Indexing - BuildIndex pairs images with their masks and WriteIndex
//     records the pairs in data/data_paths.txt, the marker Fetch consults.
//
// # Layout
//
// Everything lives below <root>/data:
//
//	data/
//	  BBBC005_v1_images/        images archive, extracted in full
//	  BBBC005_v1_ground_truth/  ground-truth archive, filtered to its own folder
//	  data_paths.txt            image/target pairs, written by WriteIndex
//	  .fetch.lock               held while a fetch runs; left in place afterwards
//
// # Filename grammar
//
// BBBC005 files are named
//
//	<prefix>_<row><col>_C<cells>_F<blur>_s<sample>_w<channel>.TIF
//
// for example SIMCEPImages_A05_C18_F1_s05_w1.TIF. The blur level F
// distinguishes synthetically defocused variants of the same source image.
// The image ID is <col>_C<cells>_s<sample> (05_C18_s05 above), shared by
// every blur level.
//
// For CLI integration, attach NewCommand to a Cobra root command.
package bbbc005
