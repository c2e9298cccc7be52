package buildinfo

const Graffiti = "___  ____   _______ \n|  \\/  | | | |  _  \\\n| .  . | | | | | | |\n| |\\/| | | | | | | |\n| |  | \\ \\_/ / |/ / \n\\_|  |_/\\___/|___/  \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "MVD"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
