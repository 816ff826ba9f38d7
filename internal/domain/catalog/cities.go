package catalog

import "github.com/FACorreiaa/loci-locality/internal/types"

const builtinDefaultID = "lisbon"

var builtinCities = []types.City{
	{ID: "lisbon", Name: "Lisbon", Latitude: 38.7223, Longitude: -9.1393, Region: "Lisboa"},
	{ID: "porto", Name: "Porto", Latitude: 41.1579, Longitude: -8.6291, Region: "Norte"},
	{ID: "faro", Name: "Faro", Latitude: 37.0194, Longitude: -7.9322, Region: "Algarve"},
	{ID: "coimbra", Name: "Coimbra", Latitude: 40.2033, Longitude: -8.4103, Region: "Centro"},
	{ID: "madrid", Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038, Region: "Comunidad de Madrid"},
	{ID: "barcelona", Name: "Barcelona", Latitude: 41.3874, Longitude: 2.1686, Region: "Catalonia"},
	{ID: "seville", Name: "Seville", Latitude: 37.3891, Longitude: -5.9845, Region: "Andalusia"},
	{ID: "paris", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Region: "Île-de-France"},
	{ID: "lyon", Name: "Lyon", Latitude: 45.7640, Longitude: 4.8357, Region: "Auvergne-Rhône-Alpes"},
	{ID: "marseille", Name: "Marseille", Latitude: 43.2965, Longitude: 5.3698, Region: "Provence-Alpes-Côte d'Azur"},
	{ID: "london", Name: "London", Latitude: 51.5072, Longitude: -0.1276, Region: "England"},
	{ID: "berlin", Name: "Berlin", Latitude: 52.5200, Longitude: 13.4050},
	{ID: "amsterdam", Name: "Amsterdam", Latitude: 52.3676, Longitude: 4.9041, Region: "North Holland"},
	{ID: "rome", Name: "Rome", Latitude: 41.9028, Longitude: 12.4964, Region: "Lazio"},
	{ID: "milan", Name: "Milan", Latitude: 45.4642, Longitude: 9.1900, Region: "Lombardy"},
	{ID: "vienna", Name: "Vienna", Latitude: 48.2082, Longitude: 16.3738},
	{ID: "prague", Name: "Prague", Latitude: 50.0755, Longitude: 14.4378},
	{ID: "new-york", Name: "New York", Latitude: 40.7128, Longitude: -74.0060, Region: "New York"},
	{ID: "tokyo", Name: "Tokyo", Latitude: 35.6762, Longitude: 139.6503},
}
