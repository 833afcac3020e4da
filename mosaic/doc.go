// Package mosaic builds photo mosaics on top of the nearest-colour index.
//
// Catalog scans a directory of thumbnails and maps each thumbnail's mean
// colour to its path. A Tiler then replaces every pixel of a target image
// with the thumbnail whose mean colour is nearest to it, producing an image
// TileSize times larger in each dimension.
package mosaic
