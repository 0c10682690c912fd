package phase

// Built-in puzzle banks for the tactics, mate and PGN study drills. Small
// on purpose: the device ships offline and the banks live in the binary.

type puzzle struct {
	FEN         string
	SolutionUCI string
	Prompt      string
}

var tacticsPuzzles = []puzzle{
	{
		FEN:         "2r1k3/8/8/8/4N3/8/8/4K3 w - - 0 1",
		SolutionUCI: "e4d6",
		Prompt:      "Fork king and rook",
	},
	{
		FEN:         "4k3/8/8/3r1b2/4P3/8/8/4K3 w - - 0 1",
		SolutionUCI: "e4d5",
		Prompt:      "Win material",
	},
	{
		FEN:         "6k1/5ppp/8/8/8/8/1q3PPP/3R2K1 w - - 0 1",
		SolutionUCI: "d1d8",
		Prompt:      "Exploit the back rank",
	},
}

var matePuzzles = []puzzle{
	{
		FEN:         "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
		SolutionUCI: "h5f7",
		Prompt:      "White mates in one",
	},
	{
		FEN:         "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		SolutionUCI: "a1a8",
		Prompt:      "White mates in one",
	},
	{
		FEN:         "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2",
		SolutionUCI: "d8h4",
		Prompt:      "Black mates in one",
	},
}

type study struct {
	Title string
	Moves []string // SAN plies
}

var studies = []study{
	{
		Title: "Morphy, Opera Game 1858",
		Moves: []string{
			"e4", "e5", "Nf3", "d6", "d4", "Bg4", "dxe5", "Bxf3", "Qxf3", "dxe5",
			"Bc4", "Nf6", "Qb3", "Qe7", "Nc3", "c6", "Bg5", "b5", "Nxb5", "cxb5",
			"Bxb5+", "Nbd7", "O-O-O", "Rd8", "Rxd7", "Rxd7", "Rd1", "Qe6",
			"Bxd7+", "Nxd7", "Qb8+", "Nxb8", "Rd8#",
		},
	},
	{
		Title: "Anderssen, Immortal Game 1851",
		Moves: []string{
			"e4", "e5", "f4", "exf4", "Bc4", "Qh4+", "Kf1", "b5", "Bxb5", "Nf6",
			"Nf3", "Qh6", "d3", "Nh5", "Nh4", "Qg5", "Nf5", "c6", "g4", "Nf6",
			"Rg1", "cxb5", "h4", "Qg6", "h5", "Qg5", "Qf3", "Ng8", "Bxf4", "Qf6",
			"Nc3", "Bc5", "Nd5", "Qxb2", "Bd6", "Bxg1", "e5", "Qxa1+", "Ke2",
			"Na6", "Nxg7+", "Kd8", "Qf6+", "Nxf6", "Be7#",
		},
	},
}
